/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND DATES:
  Amounts and rates are decimal strings ("1260.00" style, as produced by
  shopspring/decimal). Requests accept JSON numbers too. Dates are
  YYYY-MM-DD; an empty string means "not set".

TYPES:
  Terms:     factory.PaymentTermJSON (shared with storage and presets)
  Orders:    OrderDTO, InstallmentDTO, CreateOrderRequest, SetTotalRequest,
             SelectTermRequest, InstallmentRequest, ReplaceInstallmentsRequest
  Reports:   ReconciliationDTO, SummaryDTO, AdjustmentDTO, AuditEntryDTO
  Contract:  ContractDTO, ContractViewDTO, SignContractRequest
  Portal:    PortalTermRequest, PreviewDTO

SEE ALSO:
  - handlers.go, portal.go: Use these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// ORDERS
// =============================================================================

type InstallmentDTO struct {
	Sequence       int             `json:"sequence"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        string          `json:"due_date"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Status         string          `json:"status"`
	AutoGenerated  bool            `json:"auto_generated"`
	Notes          string          `json:"notes,omitempty"`
}

type OrderDTO struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	State         string           `json:"state"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	Total         decimal.Decimal  `json:"total"`
	Currency      string           `json:"currency"`
	OrderDate     string           `json:"order_date"`
	TermID        string           `json:"payment_term_id,omitempty"`
	TermName      string           `json:"payment_term_name,omitempty"`
	Installments  []InstallmentDTO `json:"installments"`
	ScheduleTotal decimal.Decimal  `json:"schedule_total"`
	Summary       string           `json:"summary"`
	Contract      ContractDTO      `json:"contract"`
	Signed        bool             `json:"signed"`
	SignedOn      string           `json:"signed_on,omitempty"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

type CreateOrderRequest struct {
	Name          string          `json:"name"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Total         decimal.Decimal `json:"total"`
	OrderDate     string          `json:"order_date"`
	TermID        string          `json:"payment_term_id"`
	Contract      *ContractDTO    `json:"contract"`
}

type SetTotalRequest struct {
	Total decimal.Decimal `json:"total"`
}

// SelectTermRequest selects a term; an empty id detaches the current one.
type SelectTermRequest struct {
	TermID string `json:"payment_term_id"`
}

// InstallmentRequest is used both to add and to edit an installment. On
// edit, omitted fields are left unchanged.
type InstallmentRequest struct {
	Amount       *decimal.Decimal `json:"amount"`
	DueDate      *string          `json:"due_date"`
	InterestRate *decimal.Decimal `json:"interest_rate"`
	DiscountRate *decimal.Decimal `json:"discount_rate"`
	Notes        *string          `json:"notes"`
}

type ReplaceInstallmentsRequest struct {
	Installments []InstallmentRequest `json:"installments"`
}

// =============================================================================
// REPORTS
// =============================================================================

type ReconciliationDTO struct {
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
	Diff     decimal.Decimal `json:"diff"`
	Balanced bool            `json:"balanced"`
}

type SummaryDTO struct {
	Summary string `json:"summary"`
}

type AdjustmentDTO struct {
	Product   string          `json:"product"`
	Label     string          `json:"label"`
	Quantity  int             `json:"quantity"`
	PriceUnit decimal.Decimal `json:"price_unit"`
}

type AuditEntryDTO struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type SweepResponse struct {
	AsOf    string `json:"as_of"`
	Flagged int    `json:"flagged"`
}

// =============================================================================
// CONTRACT
// =============================================================================

type ContractDTO struct {
	PolicyNumber            string          `json:"policy_number"`
	SchoolYear              string          `json:"school_year"`
	Insurer                 string          `json:"insurer"`
	InsuredAmount           decimal.Decimal `json:"insured_amount"`
	EventsLimit             decimal.Decimal `json:"events_limit"`
	InItinereLimit          decimal.Decimal `json:"in_itinere_limit"`
	EventsMaxQuantity       int             `json:"events_max_quantity"`
	InItinereMaxQuantity    int             `json:"in_itinere_max_quantity"`
	Emergencies             bool            `json:"emergencies"`
	StartDate               string          `json:"contract_start_date"`
	EndDate                 string          `json:"contract_end_date"`
	AssistanceLimit         decimal.Decimal `json:"assistance_limit"`
	InItinerePluralLimit    decimal.Decimal `json:"in_itinere_plural_limit"`
	ShowPaymentTable        bool            `json:"show_payment_table"`
	LegalRepresentativeName string          `json:"legal_representative_name"`
	LegalRepresentativeDNI  string          `json:"legal_representative_dni"`
}

type ContractViewDTO struct {
	Order         OrderDTO         `json:"order"`
	Summary       string           `json:"summary"`
	TotalInWords  string           `json:"total_in_words"`
	SignDate      string           `json:"sign_date,omitempty"`
	Installments  []InstallmentDTO `json:"installments"`
	ScheduleTotal decimal.Decimal  `json:"schedule_total"`
	Signed        bool             `json:"signed"`
	SignedBy      string           `json:"signed_by,omitempty"`
}

// SignContractRequest carries the signature image, base64 encoded in JSON.
type SignContractRequest struct {
	Name      string `json:"name"`
	Signature []byte `json:"signature"`
}

type SignContractResponse struct {
	Redirect string `json:"redirect"`
}

// =============================================================================
// PORTAL
// =============================================================================

// PortalTermRequest is the body of the portal term endpoints. The access
// token may also be passed as the access_token query parameter.
type PortalTermRequest struct {
	TermID      string `json:"payment_term_id"`
	AccessToken string `json:"access_token"`
}

type PreviewInstallmentDTO struct {
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	DueDate      string          `json:"due_date"`
}

type PreviewDTO struct {
	Currency     string                  `json:"currency"`
	Installments []PreviewInstallmentDTO `json:"installments"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toInstallmentDTOs(o *insurance.SaleOrder, list []schedule.Installment) []InstallmentDTO {
	round := o.Currency.Round
	dtos := make([]InstallmentDTO, len(list))
	for i, in := range list {
		dtos[i] = InstallmentDTO{
			Sequence:       in.Sequence,
			Amount:         in.Amount,
			DueDate:        in.DueDate.String(),
			InterestRate:   in.InterestRate,
			DiscountRate:   in.DiscountRate,
			BaseAmount:     round(in.BaseAmount()),
			InterestAmount: round(in.InterestAmount()),
			DiscountAmount: round(in.DiscountAmount()),
			Status:         string(in.Status),
			AutoGenerated:  in.AutoGenerated,
			Notes:          in.Notes,
		}
	}
	return dtos
}

func toOrderDTO(o *insurance.SaleOrder) OrderDTO {
	dto := OrderDTO{
		ID:            string(o.ID),
		Name:          o.Name,
		State:         string(o.State),
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Total:         o.Total,
		Currency:      o.Currency.Code,
		OrderDate:     o.OrderDate.String(),
		Installments:  toInstallmentDTOs(o, o.Installments),
		ScheduleTotal: o.ScheduleTotal(),
		Summary:       schedule.Summary(&o.Order),
		Contract:      toContractDTO(o.Contract),
		Signed:        o.Signature != nil,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339),
	}
	if o.Term != nil {
		dto.TermID = string(o.Term.ID)
		dto.TermName = o.Term.DisplayName()
	}
	if o.SignedOn != nil {
		dto.SignedOn = o.SignedOn.Format(time.RFC3339)
	}
	return dto
}

func toContractDTO(c insurance.ContractTerms) ContractDTO {
	return ContractDTO{
		PolicyNumber:            c.PolicyNumber,
		SchoolYear:              c.SchoolYear,
		Insurer:                 c.Insurer,
		InsuredAmount:           c.InsuredAmount,
		EventsLimit:             c.EventsLimit,
		InItinereLimit:          c.InItinereLimit,
		EventsMaxQuantity:       c.EventsMaxQuantity,
		InItinereMaxQuantity:    c.InItinereMaxQuantity,
		Emergencies:             c.Emergencies,
		StartDate:               c.StartDate.String(),
		EndDate:                 c.EndDate.String(),
		AssistanceLimit:         c.AssistanceLimit,
		InItinerePluralLimit:    c.InItinerePluralLimit,
		ShowPaymentTable:        c.ShowPaymentTable,
		LegalRepresentativeName: c.LegalRepresentativeName,
		LegalRepresentativeDNI:  c.LegalRepresentativeDNI,
	}
}

func (c ContractDTO) toContractTerms() (insurance.ContractTerms, error) {
	start, err := parseOptionalDate(c.StartDate)
	if err != nil {
		return insurance.ContractTerms{}, err
	}
	end, err := parseOptionalDate(c.EndDate)
	if err != nil {
		return insurance.ContractTerms{}, err
	}
	return insurance.ContractTerms{
		PolicyNumber:            c.PolicyNumber,
		SchoolYear:              c.SchoolYear,
		Insurer:                 c.Insurer,
		InsuredAmount:           c.InsuredAmount,
		EventsLimit:             c.EventsLimit,
		InItinereLimit:          c.InItinereLimit,
		EventsMaxQuantity:       c.EventsMaxQuantity,
		InItinereMaxQuantity:    c.InItinereMaxQuantity,
		Emergencies:             c.Emergencies,
		StartDate:               start,
		EndDate:                 end,
		AssistanceLimit:         c.AssistanceLimit,
		InItinerePluralLimit:    c.InItinerePluralLimit,
		ShowPaymentTable:        c.ShowPaymentTable,
		LegalRepresentativeName: c.LegalRepresentativeName,
		LegalRepresentativeDNI:  c.LegalRepresentativeDNI,
	}, nil
}

func (r InstallmentRequest) toEdit() (schedule.InstallmentEdit, error) {
	edit := schedule.InstallmentEdit{
		Amount:       r.Amount,
		InterestRate: r.InterestRate,
		DiscountRate: r.DiscountRate,
		Notes:        r.Notes,
	}
	if r.DueDate != nil {
		d, err := schedule.ParseDate(*r.DueDate)
		if err != nil {
			return edit, err
		}
		edit.DueDate = &d
	}
	return edit, nil
}

func (r InstallmentRequest) toInstallment() (schedule.Installment, error) {
	in := schedule.Installment{Status: schedule.StatusPending}
	if r.Amount != nil {
		in.Amount = *r.Amount
	}
	if r.InterestRate != nil {
		in.InterestRate = *r.InterestRate
	}
	if r.DiscountRate != nil {
		in.DiscountRate = *r.DiscountRate
	}
	if r.Notes != nil {
		in.Notes = *r.Notes
	}
	if r.DueDate != nil {
		d, err := parseOptionalDate(*r.DueDate)
		if err != nil {
			return in, err
		}
		in.DueDate = d
	}
	return in, nil
}

func toPreviewDTO(p *insurance.Preview) PreviewDTO {
	dto := PreviewDTO{Currency: p.Currency, Installments: make([]PreviewInstallmentDTO, len(p.Installments))}
	for i, in := range p.Installments {
		dto.Installments[i] = PreviewInstallmentDTO{
			Amount:       in.Amount,
			InterestRate: in.InterestRate,
			DiscountRate: in.DiscountRate,
			DueDate:      in.DueDate.String(),
		}
	}
	return dto
}

func parseOptionalDate(s string) (schedule.Date, error) {
	if s == "" {
		return schedule.Date{}, nil
	}
	return schedule.ParseDate(s)
}
