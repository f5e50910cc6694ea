package constants

const (
	ViewData            = "view_data"
	CreateListing       = "create_listing"
	TransitionListing   = "transition_listing"
	CreateInquiry       = "create_inquiry"
	RespondInquiry      = "respond_inquiry"
	AcceptInquiry       = "accept_inquiry"
	AdvanceTransaction  = "advance_transaction"
	SubmitRating        = "submit_rating"
	ManagePrices        = "manage_prices"
	ManageDealerProfile = "manage_dealer_profile"
	VerifyDealer        = "verify_dealer"
	ManageCatalog       = "manage_catalog"
	AwardPoints         = "award_points"
	SpendPoints         = "spend_points"
	ViewLedger          = "view_ledger"
)
