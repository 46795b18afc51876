package services

import (
	"context"

	"github.com/google/uuid"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error)
}

type profileService struct {
	profiles repositories.ProfileRepository
}

func NewProfileService(profiles repositories.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profiles.FindByUserID(ctx, userID)
}

// Update patches the profile, creating it when the user has none yet.
func (s *profileService) Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
		profile = &models.Profile{UserID: userID}
	}

	setString(&profile.FirstName, req.FirstName)
	setString(&profile.LastName, req.LastName)
	setString(&profile.Email, req.Email)
	setString(&profile.PhoneNumber, req.PhoneNumber)
	setString(&profile.Location, req.Location)
	setString(&profile.Website, req.Website)
	setString(&profile.LinkedinURL, req.LinkedinURL)
	setString(&profile.GithubURL, req.GithubURL)

	if req.WorkExperience != nil {
		profile.WorkExperience = req.WorkExperience
	}
	if req.Education != nil {
		profile.Education = req.Education
	}
	if req.Skills != nil {
		profile.Skills = req.Skills
	}
	if req.Projects != nil {
		profile.Projects = req.Projects
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
