package inquiries

import (
	"context"
	"testing"
	"time"

	"akrion-backend/internal/domain"
	"akrion-backend/internal/infrastructure/database"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupInquiriesDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func createInqUser(t *testing.T, db *gorm.DB, username, role string) *domain.User {
	u := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

// activeScrap seeds a material and an active scrap listing for it.
func activeScrap(t *testing.T, db *gorm.DB, seller *domain.User, price, qty int64) *domain.ScrapListing {
	cat := &domain.ScrapCategory{Name: "Metals-" + uuid.NewString(), IsActive: true}
	require.NoError(t, db.Create(cat).Error)
	m := &domain.ScrapMaterial{CategoryID: cat.CategoryID, Name: "Steel", Unit: "kg", IsActive: true}
	require.NoError(t, db.Create(m).Error)
	l := &domain.ScrapListing{
		SellerID: seller.UserID, MaterialID: m.MaterialID,
		Title: "Steel rods", Quantity: decimal.NewFromInt(qty),
		QualityGrade: domain.GradeB, ExpectedPrice: decimal.NewFromInt(price),
		Status: domain.ListingActive,
	}
	require.NoError(t, db.Create(l).Error)
	return l
}

func TestCreate_Validation(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "iseller", constants.Regular)
	buyer := createInqUser(t, db, "ibuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	_, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ListingRef{}, Message: "hi",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	neg := decimal.NewFromInt(-5)
	_, err = svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID),
		Message: "hi", OfferedPrice: &neg,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(uuid.New()), Message: "hi",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreate_SelfInquiryForbidden(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "narcissus", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	_, err := svc.Create(context.Background(), CreateInput{
		BuyerID: seller.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "me again",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestCreate_RequiresActiveListing(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "doneseller", constants.Regular)
	buyer := createInqUser(t, db, "latebuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)
	require.NoError(t, db.Model(listing).Update("status", domain.ListingSold).Error)

	_, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "still there?",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))
}

func TestCreate_ExpiredListingRejected(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "xseller", constants.Regular)
	buyer := createInqUser(t, db, "xbuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	// The row still says active but the expiry has passed.
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(listing).Update("expires_at", past).Error)

	_, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "too late",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))

	// The check also settles the row.
	var got domain.ScrapListing
	require.NoError(t, db.First(&got, "listing_id = ?", listing.ListingID).Error)
	assert.Equal(t, domain.ListingExpired, got.Status)
}

func TestRespondRejectWorkflow(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "wseller", constants.Regular)
	buyer := createInqUser(t, db, "wbuyer", constants.Regular)
	stranger := createInqUser(t, db, "wstranger", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	inq, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "interested",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryPending, inq.Status)

	_, err = svc.Respond(context.Background(), inq.InquiryID, stranger.UserID, "not mine")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	got, err := svc.Respond(context.Background(), inq.InquiryID, seller.UserID, "still available")
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryResponded, got.Status)
	assert.Equal(t, "still available", got.SellerResponse)

	// Responding twice is a transition error.
	_, err = svc.Respond(context.Background(), inq.InquiryID, seller.UserID, "again")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))

	// A responded inquiry can still be rejected.
	got, err = svc.Reject(context.Background(), inq.InquiryID, seller.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryRejected, got.Status)

	_, err = svc.Reject(context.Background(), inq.InquiryID, seller.UserID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))
}

func TestAccept_CreatesPendingTransaction(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "aseller", constants.Regular)
	buyer := createInqUser(t, db, "abuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	offerPrice := decimal.NewFromInt(90)
	offerQty := decimal.NewFromInt(8)
	inq, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID),
		Message: "deal?", OfferedPrice: &offerPrice, OfferedQuantity: &offerQty,
	})
	require.NoError(t, err)

	tr, err := svc.Accept(context.Background(), inq.InquiryID, seller.UserID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TxPending, tr.Status)
	assert.Equal(t, buyer.UserID, tr.BuyerID)
	assert.Equal(t, seller.UserID, tr.SellerID)
	assert.Equal(t, inq.InquiryID, tr.InquiryID)
	assert.True(t, tr.UnitPrice.Equal(offerPrice))
	assert.True(t, tr.Quantity.Equal(offerQty))
	assert.True(t, tr.TotalAmount.Equal(decimal.NewFromInt(720)))

	got, err := svc.Get(context.Background(), inq.InquiryID, buyer.UserID, constants.Regular)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryAccepted, got.Status)

	// Accepting twice is a transition error.
	_, err = svc.Accept(context.Background(), inq.InquiryID, seller.UserID, nil, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))
}

func TestAccept_FallsBackToListingTerms(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "fseller", constants.Regular)
	buyer := createInqUser(t, db, "fbuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	inq, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "as listed",
	})
	require.NoError(t, err)

	tr, err := svc.Accept(context.Background(), inq.InquiryID, seller.UserID, nil, nil)
	require.NoError(t, err)
	assert.True(t, tr.UnitPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, tr.Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, tr.TotalAmount.Equal(decimal.NewFromInt(1000)))
}

func TestAccept_NegotiatedFinalTerms(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "nseller", constants.Regular)
	buyer := createInqUser(t, db, "nbuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	offerPrice := decimal.NewFromInt(90)
	inq, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID),
		Message: "meet in the middle?", OfferedPrice: &offerPrice,
	})
	require.NoError(t, err)

	// The seller's final terms win over both the offer and the listing.
	finalPrice := decimal.NewFromInt(95)
	finalQty := decimal.NewFromInt(7)
	tr, err := svc.Accept(context.Background(), inq.InquiryID, seller.UserID, &finalPrice, &finalQty)
	require.NoError(t, err)
	assert.True(t, tr.UnitPrice.Equal(finalPrice))
	assert.True(t, tr.Quantity.Equal(finalQty))
	assert.True(t, tr.TotalAmount.Equal(decimal.NewFromInt(665)))
}

func TestAccept_FinalTermsValidation(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "vseller", constants.Regular)
	buyer := createInqUser(t, db, "vbuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	inq, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "terms?",
	})
	require.NoError(t, err)

	neg := decimal.NewFromInt(-1)
	_, err = svc.Accept(context.Background(), inq.InquiryID, seller.UserID, &neg, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	zero := decimal.Zero
	_, err = svc.Accept(context.Background(), inq.InquiryID, seller.UserID, nil, &zero)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Neither rejection touched the inquiry.
	got, err := svc.Get(context.Background(), inq.InquiryID, buyer.UserID, constants.Regular)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryPending, got.Status)
}

func TestAccept_ExpiredListingRejected(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "eseller", constants.Regular)
	buyer := createInqUser(t, db, "ebuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	inq, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "quick",
	})
	require.NoError(t, err)

	// The listing lapses between inquiry and accept.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(listing).Update("expires_at", past).Error)

	_, err = svc.Accept(context.Background(), inq.InquiryID, seller.UserID, nil, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))

	var count int64
	require.NoError(t, db.Model(&domain.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAccept_RequiresActiveListing(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "gseller", constants.Regular)
	buyer := createInqUser(t, db, "gbuyer", constants.Regular)
	listing := activeScrap(t, db, seller, 100, 10)

	inq, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "hold it",
	})
	require.NoError(t, err)

	// Listing closes between inquiry and accept.
	require.NoError(t, db.Model(listing).Update("status", domain.ListingCancelled).Error)
	_, err = svc.Accept(context.Background(), inq.InquiryID, seller.UserID, nil, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))
}

func TestGet_PartiesOnly(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	seller := createInqUser(t, db, "pseller", constants.Regular)
	buyer := createInqUser(t, db, "pbuyer", constants.Regular)
	stranger := createInqUser(t, db, "pstranger", constants.Regular)
	admin := createInqUser(t, db, "padmin", constants.Admin)
	listing := activeScrap(t, db, seller, 100, 10)

	inq, err := svc.Create(context.Background(), CreateInput{
		BuyerID: buyer.UserID, Ref: domain.ScrapRef(listing.ListingID), Message: "private",
	})
	require.NoError(t, err)

	for _, actor := range []*domain.User{buyer, seller, admin} {
		_, err = svc.Get(context.Background(), inq.InquiryID, actor.UserID, actor.Role)
		require.NoError(t, err)
	}
	_, err = svc.Get(context.Background(), inq.InquiryID, stranger.UserID, constants.Regular)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestDealerInquiryWorkflow(t *testing.T) {
	db := setupInquiriesDB(t)
	svc := &Service{DB: db}
	owner := createInqUser(t, db, "downer", constants.Dealer)
	asker := createInqUser(t, db, "dasker", constants.Regular)
	dealer := &domain.DealerProfile{
		UserID: owner.UserID, BusinessName: "Owner Scrap",
		BusinessRegistrationNumber: "REG-D1",
		BusinessAddress:            "1 Yard", BusinessPhone: "123", BusinessEmail: "d@example.com",
		VerificationStatus: domain.VerificationVerified,
	}
	require.NoError(t, db.Create(dealer).Error)

	inq, err := svc.CreateDealer(context.Background(), CreateDealerInput{
		DealerID: dealer.DealerID, UserID: asker.UserID,
		Subject: "Copper rates", Message: "What do you pay for grade A copper?",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DealerInquiryPending, inq.Status)
	assert.Equal(t, "email", inq.ContactPreference) // default preference

	_, err = svc.RespondDealer(context.Background(), inq.InquiryID, asker.UserID, "not yours")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	got, err := svc.RespondDealer(context.Background(), inq.InquiryID, owner.UserID, "450 per kg")
	require.NoError(t, err)
	assert.Equal(t, domain.DealerInquiryResponded, got.Status)
	require.NotNil(t, got.RespondedAt)

	// Either party may close; closing twice is a transition error.
	got, err = svc.CloseDealer(context.Background(), inq.InquiryID, asker.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealerInquiryClosed, got.Status)
	_, err = svc.CloseDealer(context.Background(), inq.InquiryID, owner.UserID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))

	inbox, err := svc.ListDealerInbox(context.Background(), dealer.DealerID)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}
