package handlers

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/devilmonastery/chirp/api/profilev1"
	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/services"
)

// ProfileHandler handles profile gRPC requests
type ProfileHandler struct {
	profilev1.UnimplementedProfileServiceServer
	profileService *services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetUserByUsername returns the public profile for a username
func (h *ProfileHandler) GetUserByUsername(ctx context.Context, req *profilev1.GetUserByUsernameRequest) (*profilev1.GetUserByUsernameResponse, error) {
	profile, err := h.profileService.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, toStatus(err)
	}
	return &profilev1.GetUserByUsernameResponse{Profile: profileToProto(profile)}, nil
}

// UpdateProfile edits the authenticated caller's profile
func (h *ProfileHandler) UpdateProfile(ctx context.Context, req *profilev1.UpdateProfileRequest) (*profilev1.UpdateProfileResponse, error) {
	result, err := h.profileService.UpdateProfile(ctx, entities.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &profilev1.UpdateProfileResponse{Success: result.Success, Message: result.Message}, nil
}

// GetProfilesByUserIDs returns public profiles for a batch of user IDs
func (h *ProfileHandler) GetProfilesByUserIDs(ctx context.Context, req *profilev1.GetProfilesByUserIDsRequest) (*profilev1.GetProfilesByUserIDsResponse, error) {
	profiles, err := h.profileService.GetProfilesByUserIDs(ctx, req.UserIDs)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &profilev1.GetProfilesByUserIDsResponse{Profiles: make([]*profilev1.Profile, 0, len(profiles))}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, profileToProto(p))
	}
	return resp, nil
}

func profileToProto(p *entities.ClientProfile) *profilev1.Profile {
	return &profilev1.Profile{
		ID:              p.ID,
		Username:        p.Username,
		ProfileImageURL: p.ProfileImageURL,
		DisplayName:     p.DisplayName,
		Bio:             p.Bio,
		Location:        p.Location,
	}
}

// toStatus maps service errors to gRPC status codes
func toStatus(err error) error {
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, "request canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	var pe *services.ProfileError
	if !errors.As(err, &pe) {
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}

	switch pe.Kind {
	case services.KindNotFound:
		return status.Error(codes.NotFound, pe.Message)
	case services.KindInvalidArgument:
		return status.Error(codes.InvalidArgument, pe.Message)
	case services.KindUnauthenticated:
		return status.Error(codes.Unauthenticated, pe.Message)
	case services.KindUpstream:
		return status.Error(codes.Unavailable, pe.Message)
	default:
		return status.Error(codes.Internal, pe.Message)
	}
}
