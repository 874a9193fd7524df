package workflow

// Action represents a requested operation that can cause a status transition
type Action string

const (
	ActionMarkContacted        Action = "MARK_CONTACTED"
	ActionSubmitForBrandReview Action = "SUBMIT_FOR_BRAND_REVIEW"
	ActionReviewBrand          Action = "REVIEW_BRAND"
	ActionSubmitDocuments      Action = "SUBMIT_DOCUMENTS"
	ActionReturnDocuments      Action = "RETURN_DOCUMENTS"
	ActionSendToLawyer         Action = "SEND_TO_LAWYER"
	ActionAcceptByLawyer       Action = "ACCEPT_BY_LAWYER"
	ActionCompleteByLawyer     Action = "COMPLETE_BY_LAWYER"
	ActionArchive              Action = "ARCHIVE"
	ActionReject               Action = "REJECT"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
