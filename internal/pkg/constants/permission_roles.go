package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
// All role-based authorization goes through this table; handlers never branch
// on roles directly.
var PermissionRoles = map[string][]string{
	ViewData:            {Regular, Dealer, Admin},
	CreateListing:       {Regular, Dealer, Admin},
	TransitionListing:   {Regular, Dealer, Admin},
	CreateInquiry:       {Regular, Dealer, Admin},
	RespondInquiry:      {Regular, Dealer, Admin},
	AcceptInquiry:       {Regular, Dealer, Admin},
	AdvanceTransaction:  {Regular, Dealer, Admin},
	SubmitRating:        {Regular, Admin},
	ManagePrices:        {Dealer, Admin},
	ManageDealerProfile: {Dealer, Admin},
	VerifyDealer:        {Admin},
	ManageCatalog:       {Admin},
	AwardPoints:         {Admin},
	SpendPoints:         {Regular, Dealer, Admin},
	ViewLedger:          {Regular, Dealer, Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
