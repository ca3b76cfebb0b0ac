package services

import (
	"sync"
	"testing"

	"team-manage-system/models"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ProfileSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *ProfileService
}

func TestProfileSuite(t *testing.T) {
	suite.Run(t, new(ProfileSuite))
}

func (s *ProfileSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.svc = NewProfileService(s.db)
}

func (s *ProfileSuite) TestEnsureProfileCreatesMinimalRow() {
	prof, err := s.svc.EnsureProfile("user-1", "jane.doe@example.com", "")
	s.Require().NoError(err)

	s.Equal("user-1", prof.ExternalUserID)
	s.Equal("Jane Doe", prof.DisplayName)
	s.Equal("", prof.Role) // pending selection
}

func (s *ProfileSuite) TestEnsureProfileIsIdempotent() {
	first, err := s.svc.EnsureProfile("user-1", "jane@example.com", "Jane")
	s.Require().NoError(err)

	second, err := s.svc.EnsureProfile("user-1", "different@example.com", "Someone Else")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal("Jane", second.DisplayName) // existing row untouched

	var count int64
	s.db.Model(&models.Profile{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *ProfileSuite) TestEnsureProfileSurvivesDuplicateTrigger() {
	// Duplicate bootstrap invocations for the same new identity must still
	// leave exactly one row.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.EnsureProfile("user-1", "jane@example.com", "Jane")
			s.NoError(err)
		}()
	}
	wg.Wait()

	var count int64
	s.db.Model(&models.Profile{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *ProfileSuite) TestDeriveDisplayName() {
	s.Equal("Jane Doe", DeriveDisplayName("Jane Doe", "whatever@example.com"))
	s.Equal("Jane Doe", DeriveDisplayName("", "jane.doe@example.com"))
	s.Equal("Jay Smith Jr", DeriveDisplayName("", "jay_smith-jr@example.com"))
	s.Equal("New Member", DeriveDisplayName("", ""))
}

func (s *ProfileSuite) TestSelectRoleIsOneTime() {
	_, err := s.svc.EnsureProfile("user-1", "jane@example.com", "Jane")
	s.Require().NoError(err)

	prof, err := s.svc.SelectRole("user-1", models.RoleAthlete)
	s.Require().NoError(err)
	s.Equal(models.RoleAthlete, prof.Role)

	// Re-selecting the same role is a no-op, switching is refused.
	_, err = s.svc.SelectRole("user-1", models.RoleAthlete)
	s.Require().NoError(err)

	_, err = s.svc.SelectRole("user-1", models.RoleCoach)
	s.Require().ErrorIs(err, ErrValidation)
}

func (s *ProfileSuite) TestSelectRoleRejectsUnknownRole() {
	_, err := s.svc.SelectRole("user-1", "referee")
	s.Require().ErrorIs(err, ErrValidation)
}

func (s *ProfileSuite) TestUpdateProfileMissingRow() {
	_, err := s.svc.UpdateProfile("ghost", "Name", nil)
	s.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *ProfileSuite) TestUpdateProfileChangesNameAndAvatar() {
	_, err := s.svc.EnsureProfile("user-1", "jane@example.com", "Jane")
	s.Require().NoError(err)

	avatar := "https://cdn.example.com/profiles/avatars/x.png"
	prof, err := s.svc.UpdateProfile("user-1", "Janet", &avatar)
	s.Require().NoError(err)
	s.Equal("Janet", prof.DisplayName)
	s.Require().NotNil(prof.AvatarURL)
	s.Equal(avatar, *prof.AvatarURL)
}
