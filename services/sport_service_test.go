package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"team-manage-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type SportSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *SportService
	app *fiber.App

	org   models.Organization
	sport models.Sport
}

func TestSportSuite(t *testing.T) {
	suite.Run(t, new(SportSuite))
}

func (s *SportSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.svc = NewSportService(s.db)

	s.org = models.Organization{ID: uuid.NewString(), Name: "Northside Club"}
	s.Require().NoError(s.db.Create(&s.org).Error)
	s.sport = models.Sport{ID: uuid.NewString(), Name: "Soccer", Slug: "soccer", IsActive: true}
	s.Require().NoError(s.db.Create(&s.sport).Error)

	s.Require().NoError(s.db.Create(&models.Profile{
		ID:             uuid.NewString(),
		ExternalUserID: "athlete-a",
		DisplayName:    "Athlete A",
		Role:           models.RoleAthlete,
		OrganizationID: &s.org.ID,
	}).Error)

	// Stand-in for the gateway user-context middleware.
	s.app = fiber.New()
	s.app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "athlete-a")
		return c.Next()
	})
	s.app.Post("/sports/:id/join", s.svc.JoinSport)
	s.app.Delete("/sports/:id/leave", s.svc.LeaveSport)
	s.app.Get("/sports", s.svc.GetAllSports)
	s.app.Get("/sports/:slug", s.svc.GetSportBySlug)
}

func (s *SportSuite) jsonReq(method, path string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

func (s *SportSuite) TestJoinSportCreatesMembership() {
	resp := s.jsonReq("POST", "/sports/"+s.sport.ID+"/join", fiber.Map{"gender": "female"})
	s.Equal(201, resp.StatusCode)

	var membership models.UserSport
	s.Require().NoError(s.db.Where(
		"user_id = ? AND sport_id = ?", "athlete-a", s.sport.ID,
	).First(&membership).Error)
	s.Equal(s.org.ID, membership.OrganizationID)
	s.Equal("female", membership.Gender)
}

func (s *SportSuite) TestJoinSportTwiceIsNoOp() {
	s.jsonReq("POST", "/sports/"+s.sport.ID+"/join", nil)
	resp := s.jsonReq("POST", "/sports/"+s.sport.ID+"/join", nil)
	s.Equal(201, resp.StatusCode)

	var count int64
	s.db.Model(&models.UserSport{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *SportSuite) TestJoinUnknownSportIs404() {
	resp := s.jsonReq("POST", "/sports/"+uuid.NewString()+"/join", nil)
	s.Equal(404, resp.StatusCode)
}

func (s *SportSuite) TestLeaveSportRemovesMembershipAndAllowsRejoin() {
	s.jsonReq("POST", "/sports/"+s.sport.ID+"/join", nil)

	resp := s.jsonReq("DELETE", "/sports/"+s.sport.ID+"/leave", nil)
	s.Equal(200, resp.StatusCode)

	var count int64
	s.db.Model(&models.UserSport{}).Count(&count)
	s.Equal(int64(0), count)

	resp = s.jsonReq("POST", "/sports/"+s.sport.ID+"/join", nil)
	s.Equal(201, resp.StatusCode)
}

func (s *SportSuite) TestLeaveWithoutMembershipIs404() {
	resp := s.jsonReq("DELETE", "/sports/"+s.sport.ID+"/leave", nil)
	s.Equal(404, resp.StatusCode)
}

func (s *SportSuite) TestGetSportBySlug() {
	resp := s.jsonReq("GET", "/sports/soccer", nil)
	s.Equal(200, resp.StatusCode)

	resp = s.jsonReq("GET", "/sports/underwater-hockey", nil)
	s.Equal(404, resp.StatusCode)
}
