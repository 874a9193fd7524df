package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/application/service"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	caseService         service.CaseService
	invoiceService      service.InvoiceService
	notificationService service.NotificationService
	uploads             *UploadHandler
	logger              Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	caseService service.CaseService,
	invoiceService service.InvoiceService,
	notificationService service.NotificationService,
	uploads *UploadHandler,
	logger Logger,
) *Handlers {
	return &Handlers{
		caseService:         caseService,
		invoiceService:      invoiceService,
		notificationService: notificationService,
		uploads:             uploads,
		logger:              logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ListCases handles GET /api/v1/cases
func (h *Handlers) ListCases(c *gin.Context) {
	filter, err := parseCaseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	cases, err := h.caseService.ListCases(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list cases", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: cases})
}

// GetCase handles GET /api/v1/cases/:id
func (h *Handlers) GetCase(c *gin.Context) {
	id, err := caseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.caseService.GetCase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CreateCaseRequest is the body of POST /api/v1/cases
type CreateCaseRequest struct {
	ClientName  string `json:"clientName" binding:"required"`
	ClientPhone string `json:"clientPhone" binding:"required"`
	ClientEmail string `json:"clientEmail"`
	BrandName   string `json:"brandName"`
}

// CreateCase handles POST /api/v1/cases
func (h *Handlers) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.caseService.CreateCase(c.Request.Context(), actorFrom(c), service.CreateCaseInput{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		BrandName:   req.BrandName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: result})
}

// DeleteCase handles DELETE /api/v1/cases/:id
func (h *Handlers) DeleteCase(c *gin.Context) {
	id, err := caseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.caseService.DeleteCase(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// MarkContacted handles POST /api/v1/cases/:id/mark-contacted
func (h *Handlers) MarkContacted(c *gin.Context) {
	h.transition(c, workflow.ActionMarkContacted, service.TransitionInput{})
}

// SendForReviewRequest is the body of POST /api/v1/cases/:id/send-for-review
type SendForReviewRequest struct {
	BrandName string `json:"brandName" binding:"required"`
	Classes   []int  `json:"classes"`
}

// SendForReview handles POST /api/v1/cases/:id/send-for-review
func (h *Handlers) SendForReview(c *gin.Context) {
	var req SendForReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "brandName is required")
		return
	}

	h.transition(c, workflow.ActionSubmitForBrandReview, service.TransitionInput{
		BrandName: req.BrandName,
		Classes:   req.Classes,
	})
}

// ReviewBrandRequest is the body of POST /api/v1/cases/:id/review-brand.
// Status is the legacy shape ("approved"/"rejected"); Approved wins when
// both are present.
type ReviewBrandRequest struct {
	Approved *bool  `json:"approved"`
	Status   string `json:"status"`
	Reason   string `json:"reason"`
}

// ReviewBrand handles POST /api/v1/cases/:id/review-brand
func (h *Handlers) ReviewBrand(c *gin.Context) {
	var req ReviewBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	approved := req.Approved
	if approved == nil {
		switch strings.ToLower(req.Status) {
		case "approved":
			v := true
			approved = &v
		case "rejected":
			v := false
			approved = &v
		default:
			respondBadRequest(c, "approved flag or status is required")
			return
		}
	}

	h.transition(c, workflow.ActionReviewBrand, service.TransitionInput{
		Approved: approved,
		Reason:   req.Reason,
	})
}

// DocumentRef points at a previously uploaded file
type DocumentRef struct {
	FileRef  string `json:"fileRef" binding:"required"`
	FileName string `json:"fileName"`
}

// OrganizationDocs is the organization bundle of a submit-documents request
type OrganizationDocs struct {
	PowerOfAttorney         DocumentRef `json:"powerOfAttorney" binding:"required"`
	RegistrationCertificate DocumentRef `json:"registrationCertificate" binding:"required"`
}

// IndividualDocs is the individual bundle of a submit-documents request
type IndividualDocs struct {
	PowerOfAttorney DocumentRef `json:"powerOfAttorney" binding:"required"`
	Passport        DocumentRef `json:"passport" binding:"required"`
}

// SubmitDocumentsRequest is the body of POST /api/v1/cases/:id/submit-documents
type SubmitDocumentsRequest struct {
	PersonType       string            `json:"personType" binding:"required"`
	OrganizationDocs *OrganizationDocs `json:"organizationDocs"`
	IndividualDocs   *IndividualDocs   `json:"individualDocs"`
}

// SubmitDocuments handles POST /api/v1/cases/:id/submit-documents
func (h *Handlers) SubmitDocuments(c *gin.Context) {
	var req SubmitDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	pt := workflow.PersonType(strings.ToUpper(req.PersonType))
	docs, err := bundleDocuments(pt, req.OrganizationDocs, req.IndividualDocs)
	if err != nil {
		respondError(c, err)
		return
	}

	h.transition(c, workflow.ActionSubmitDocuments, service.TransitionInput{
		PersonType: pt,
		Documents:  docs,
	})
}

// ReasonRequest is a body carrying only a reason
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReturnDocuments handles POST /api/v1/cases/:id/return-documents
func (h *Handlers) ReturnDocuments(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "reason is required")
		return
	}
	h.transition(c, workflow.ActionReturnDocuments, service.TransitionInput{Reason: req.Reason})
}

// CommentRequest is a body carrying only a comment
type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// SendToLawyer handles POST /api/v1/cases/:id/send-to-lawyer
func (h *Handlers) SendToLawyer(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "comment is required")
		return
	}
	h.transition(c, workflow.ActionSendToLawyer, service.TransitionInput{Comment: req.Comment})
}

// AcceptByLawyer handles POST /api/v1/cases/:id/accept-by-lawyer
func (h *Handlers) AcceptByLawyer(c *gin.Context) {
	h.transition(c, workflow.ActionAcceptByLawyer, service.TransitionInput{})
}

// CompleteByLawyerRequest is the body of POST /api/v1/cases/:id/complete-by-lawyer
type CompleteByLawyerRequest struct {
	CertificateFile DocumentRef `json:"certificateFile" binding:"required"`
}

// CompleteByLawyer handles POST /api/v1/cases/:id/complete-by-lawyer
func (h *Handlers) CompleteByLawyer(c *gin.Context) {
	var req CompleteByLawyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "certificateFile is required")
		return
	}
	h.transition(c, workflow.ActionCompleteByLawyer, service.TransitionInput{
		CertificateRef:  req.CertificateFile.FileRef,
		CertificateName: req.CertificateFile.FileName,
	})
}

// Archive handles POST /api/v1/cases/:id/archive
func (h *Handlers) Archive(c *gin.Context) {
	h.transition(c, workflow.ActionArchive, service.TransitionInput{})
}

// Reject handles POST /api/v1/cases/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "reason is required")
		return
	}
	h.transition(c, workflow.ActionReject, service.TransitionInput{Reason: req.Reason})
}

// SendInvoiceRequest is the body of POST /api/v1/cases/:id/send-invoice.
// Amount is in cents.
type SendInvoiceRequest struct {
	Amount      int64       `json:"amount" binding:"required"`
	Comment     string      `json:"comment"`
	InvoiceFile DocumentRef `json:"invoiceFile" binding:"required"`
}

// SendInvoice handles POST /api/v1/cases/:id/send-invoice
func (h *Handlers) SendInvoice(c *gin.Context) {
	id, err := caseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req SendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "amount and invoiceFile are required")
		return
	}

	inv, err := h.invoiceService.SendInvoice(c.Request.Context(), actorFrom(c),
		id, req.Amount, req.Comment, req.InvoiceFile.FileRef)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: inv})
}

// UploadReceiptRequest is the body of upload-receipt
type UploadReceiptRequest struct {
	ReceiptFile DocumentRef `json:"receiptFile" binding:"required"`
}

// UploadReceipt handles POST /api/v1/cases/:id/invoices/:invoiceId/upload-receipt
func (h *Handlers) UploadReceipt(c *gin.Context) {
	id, invoiceID, err := invoiceIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req UploadReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "receiptFile is required")
		return
	}

	inv, err := h.invoiceService.UploadReceipt(c.Request.Context(), actorFrom(c),
		id, invoiceID, req.ReceiptFile.FileRef)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// ApproveReceipt handles POST /api/v1/cases/:id/invoices/:invoiceId/approve-receipt
func (h *Handlers) ApproveReceipt(c *gin.Context) {
	id, invoiceID, err := invoiceIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}

	inv, err := h.invoiceService.ApproveReceipt(c.Request.Context(), actorFrom(c), id, invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// ListNotifications handles GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.notificationService.ListForActor(c.Request.Context(), actorFrom(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// transition runs one lifecycle action and renders the updated case
func (h *Handlers) transition(c *gin.Context, action workflow.Action, in service.TransitionInput) {
	id, err := caseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.caseService.ExecuteTransition(c.Request.Context(), actorFrom(c), id, action, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

func caseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errBadID
	}
	return id, nil
}

func invoiceIDs(c *gin.Context) (int64, int64, error) {
	id, err := caseID(c)
	if err != nil {
		return 0, 0, err
	}
	invoiceID, err := strconv.ParseInt(c.Param("invoiceId"), 10, 64)
	if err != nil {
		return 0, 0, errBadID
	}
	return id, invoiceID, nil
}

// parseCaseFilter reads the list/export query parameters
func parseCaseFilter(c *gin.Context) (port.CaseFilter, error) {
	var f port.CaseFilter

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := workflow.Status(strings.TrimSpace(s))
			if !status.IsValid() {
				return f, errBadStatus
			}
			f.Statuses = append(f.Statuses, status)
		}
	}
	f.AssignedTo = c.Query("assignedTo")
	f.Search = c.Query("search")

	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	f.Offset, _ = strconv.Atoi(c.Query("offset"))
	if f.Offset < 0 {
		f.Offset = 0
	}

	return f, nil
}

// bundleDocuments converts the request bundle into document entities tagged
// with kind and bundle
func bundleDocuments(pt workflow.PersonType, org *OrganizationDocs, indiv *IndividualDocs) ([]*entity.Document, error) {
	bundle := entity.BundleFor(pt)

	switch pt {
	case workflow.PersonOrganization:
		if org == nil {
			return nil, errMissingBundle
		}
		return []*entity.Document{
			{Kind: entity.DocPowerOfAttorney, Bundle: bundle,
				FileRef: org.PowerOfAttorney.FileRef, FileName: org.PowerOfAttorney.FileName},
			{Kind: entity.DocRegistrationCert, Bundle: bundle,
				FileRef: org.RegistrationCertificate.FileRef, FileName: org.RegistrationCertificate.FileName},
		}, nil
	case workflow.PersonIndividual:
		if indiv == nil {
			return nil, errMissingBundle
		}
		return []*entity.Document{
			{Kind: entity.DocPowerOfAttorney, Bundle: bundle,
				FileRef: indiv.PowerOfAttorney.FileRef, FileName: indiv.PowerOfAttorney.FileName},
			{Kind: entity.DocPassport, Bundle: bundle,
				FileRef: indiv.Passport.FileRef, FileName: indiv.Passport.FileName},
		}, nil
	default:
		return nil, errBadPersonType
	}
}
