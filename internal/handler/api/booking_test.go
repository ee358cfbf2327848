//go:build unit

package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/handler/api"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/queries"
	commandsmock "shuttlecourt/tests/mock/commands"
	queriesmock "shuttlecourt/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockBookings *commandsmock.MockBookingCommands
	mockLines    *commandsmock.MockOrderLineCommands
	mockQueries  *queriesmock.MockBookingQueries
	userID       uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.userID = uuid.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockBookings = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockLines = commandsmock.NewMockOrderLineCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	handler := api.NewBookingHandler(s.mockBookings, s.mockLines, s.mockQueries)

	// Stand-in for the auth middleware
	s.router.Use(func(c *gin.Context) {
		c.Set("user_id", s.userID)
		c.Set("user_role", user.RoleCustomer)
	})
	s.router.POST("/bookings", handler.Create)
	s.router.GET("/bookings/:id", handler.GetByID)
	s.router.DELETE("/bookings/:id", handler.Cancel)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *BookingHandlerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *BookingHandlerTestSuite) TestCreateSuccess() {
	courtID := uuid.New()
	view := &queries.BookingView{ID: uuid.New(), CourtID: courtID, CustomerID: s.userID, Status: "booked"}
	s.mockBookings.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(view, nil)

	start := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(26 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"court_id":"` + courtID.String() + `","slots":[{"start_at":"` + start + `","end_at":"` + end + `"}]}`

	rec := s.do(http.MethodPost, "/bookings", body)

	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), `"booked"`)
}

func (s *BookingHandlerTestSuite) TestCreateSlotConflict() {
	courtID := uuid.New()
	s.mockBookings.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, errs.ErrSlotConflict)

	start := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(26 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"court_id":"` + courtID.String() + `","slots":[{"start_at":"` + start + `","end_at":"` + end + `"}]}`

	rec := s.do(http.MethodPost, "/bookings", body)

	s.Equal(http.StatusConflict, rec.Code)
}

func (s *BookingHandlerTestSuite) TestCreateMissingSlots() {
	rec := s.do(http.MethodPost, "/bookings", `{"court_id":"`+uuid.NewString()+`","slots":[]}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *BookingHandlerTestSuite) TestGetByIDOwner() {
	id := uuid.New()
	view := &queries.BookingView{ID: id, CustomerID: s.userID, Status: "booked"}
	s.mockQueries.EXPECT().GetByID(gomock.Any(), id).Return(view, nil)

	rec := s.do(http.MethodGet, "/bookings/"+id.String(), "")

	s.Equal(http.StatusOK, rec.Code)
}

func (s *BookingHandlerTestSuite) TestGetByIDOtherCustomerForbidden() {
	id := uuid.New()
	view := &queries.BookingView{ID: id, CustomerID: uuid.New(), Status: "booked"}
	s.mockQueries.EXPECT().GetByID(gomock.Any(), id).Return(view, nil)

	rec := s.do(http.MethodGet, "/bookings/"+id.String(), "")

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *BookingHandlerTestSuite) TestCancelNotFound() {
	id := uuid.New()
	s.mockBookings.EXPECT().
		Cancel(gomock.Any(), id, s.userID, user.RoleCustomer).
		Return(errs.ErrBookingNotFound)

	rec := s.do(http.MethodDelete, "/bookings/"+id.String(), "")

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *BookingHandlerTestSuite) TestCancelSuccess() {
	id := uuid.New()
	s.mockBookings.EXPECT().
		Cancel(gomock.Any(), id, s.userID, user.RoleCustomer).
		Return(nil)

	rec := s.do(http.MethodDelete, "/bookings/"+id.String(), "")

	s.Equal(http.StatusNoContent, rec.Code)
}

func TestBookingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}
