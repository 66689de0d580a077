package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/domain/providers"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	apperrors "github.com/raksetu/bloodhub/pkg/errors"
	"github.com/raksetu/bloodhub/pkg/geo"
)

const smsFailedMessage = "Failed to send SMS. Please try again when online."

// EmergencyRecorder is the part of EmergencyService the response flow uses
type EmergencyRecorder interface {
	Get(ctx context.Context, id string) (*entities.EmergencyRequest, error)
	RecordDonorResponse(ctx context.Context, req *entities.EmergencyRequest, at time.Time) (*entities.DonorResponseResult, error)
}

// ResponseSnapshot is what the client renders for the response flow
type ResponseSnapshot struct {
	View         entities.ResponseView          `json:"view"`
	Online       bool                           `json:"online"`
	Selected     *EmergencyDetail               `json:"selected,omitempty"`
	NearbyDonors *entities.NearbyDonorsEstimate `json:"nearbyDonors,omitempty"`
	Error        string                         `json:"error,omitempty"`
	ChatMessages []entities.ChatMessage         `json:"chatMessages"`
	Donation     *entities.DonationRecord       `json:"donation,omitempty"`
}

// ResponseService drives the per-user response flow:
// emergency-list -> emergency-detail -> donor-confirmation -> donation-confirmed.
type ResponseService struct {
	emergencies  EmergencyRecorder
	sessions     *ResponseSessionStore
	connectivity providers.Connectivity
	estimator    providers.DonorEstimator
	sms          providers.SMSSender
	support      providers.SupportChannel
	listeners    []providers.DonationListener
	metrics      *observability.Metrics
	now          func() time.Time
}

// ResponseServiceDeps are the collaborators of ResponseService
type ResponseServiceDeps struct {
	Emergencies  EmergencyRecorder
	Sessions     *ResponseSessionStore
	Connectivity providers.Connectivity
	Estimator    providers.DonorEstimator
	SMS          providers.SMSSender
	Support      providers.SupportChannel
	Listeners    []providers.DonationListener
	Metrics      *observability.Metrics
}

// NewResponseService creates a new response service
func NewResponseService(deps ResponseServiceDeps) *ResponseService {
	return &ResponseService{
		emergencies:  deps.Emergencies,
		sessions:     deps.Sessions,
		connectivity: deps.Connectivity,
		estimator:    deps.Estimator,
		sms:          deps.SMS,
		support:      deps.Support,
		listeners:    deps.Listeners,
		metrics:      deps.Metrics,
		now:          time.Now,
	}
}

// Current returns the user's current snapshot
func (s *ResponseService) Current(ctx context.Context, userID string) (*ResponseSnapshot, error) {
	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, session), nil
}

// Select opens the detail view of an active request. viewer may be nil.
func (s *ResponseService) Select(ctx context.Context, userID, emergencyID string, viewer *entities.UserProfile) (*ResponseSnapshot, error) {
	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.View != entities.ViewEmergencyList {
		return nil, apperrors.NewConflictError(fmt.Sprintf("cannot select a request from view %s", session.View))
	}

	req, err := s.emergencies.Get(ctx, emergencyID)
	if err != nil {
		return nil, err
	}

	session.Selected = req
	session.ViewerBlood = ""
	if viewer != nil {
		session.ViewerBlood = viewer.BloodType
	}
	session.NearbyDonors = nil
	session.ChatMessages = nil
	session.Donation = nil
	session.Error = ""
	session.View = entities.ViewEmergencyDetail
	return s.save(ctx, session)
}

// Back undoes the last forward step. Unknown views return to the list.
func (s *ResponseService) Back(ctx context.Context, userID string) (*ResponseSnapshot, error) {
	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch session.View {
	case entities.ViewEmergencyList:
		return s.snapshot(ctx, session), nil
	case entities.ViewDonorConfirmation:
		session.NearbyDonors = nil
		session.Error = ""
		session.View = entities.ViewEmergencyDetail
	default:
		resetToList(session)
	}
	return s.save(ctx, session)
}

// Respond computes the nearby donor estimate and moves to donor-confirmation.
// Estimation problems fall back to fixed values and are never returned.
func (s *ResponseService) Respond(ctx context.Context, userID string, loc *entities.UserLocation) (*ResponseSnapshot, error) {
	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.View != entities.ViewEmergencyDetail || session.Selected == nil {
		return nil, apperrors.NewConflictError("no emergency request is open")
	}
	if !s.connectivity.Online(ctx) {
		return nil, apperrors.NewUnavailableError("you are offline, respond by SMS instead")
	}

	estimate := s.estimate(ctx, session.Selected, loc)
	session.NearbyDonors = &estimate
	session.Error = ""
	session.View = entities.ViewDonorConfirmation
	return s.save(ctx, session)
}

func (s *ResponseService) estimate(ctx context.Context, req *entities.EmergencyRequest, loc *entities.UserLocation) entities.NearbyDonorsEstimate {
	if loc == nil || req.Coordinates == nil {
		log.Debug().Str("request_id", req.ID).Msg("Location data is missing, using fallback donor estimate")
		return entities.FallbackNearbyDonorsEstimate()
	}

	distance := geo.Distance(loc.Lat, loc.Lng, req.Coordinates.Latitude, req.Coordinates.Longitude)
	estimate, err := s.estimator.Estimate(ctx, distance)
	if err != nil {
		log.Warn().Err(err).Str("request_id", req.ID).Msg("Failed to estimate nearby donors, using fallback")
		return entities.FallbackNearbyDonorsEstimate()
	}
	return estimate
}

// ConfirmDonation records the donation. The steps run in order (count the
// response, thank-you SMS, donation listeners) and the first failure is logged
// and skips the rest, so a response that was never counted sends no SMS and
// leaves no history. The flow always ends on donation-confirmed.
func (s *ResponseService) ConfirmDonation(ctx context.Context, userID string, viewer *entities.UserProfile) (*ResponseSnapshot, error) {
	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.View != entities.ViewDonorConfirmation && session.View != entities.ViewEmergencyDetail {
		return nil, apperrors.NewConflictError(fmt.Sprintf("cannot confirm a donation from view %s", session.View))
	}
	req := session.Selected
	if req == nil {
		return nil, apperrors.NewConflictError("no emergency request is open")
	}

	now := s.now()
	record := entities.NewEmergencyDonation(req, now)
	record.UserID = userID

	if err := s.confirmSteps(ctx, req, viewer, record); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("user_id", userID).Str("request_id", req.ID).
			Msg("Donation confirmation stopped")
	}

	session.Donation = &record
	session.NearbyDonors = nil
	session.Error = ""
	session.View = entities.ViewDonationConfirmed
	return s.save(ctx, session)
}

func (s *ResponseService) confirmSteps(ctx context.Context, req *entities.EmergencyRequest, viewer *entities.UserProfile, record entities.DonationRecord) error {
	if _, err := s.emergencies.RecordDonorResponse(ctx, req, record.CreatedAt); err != nil {
		return fmt.Errorf("record donor response: %w", err)
	}

	if viewer.HasPhone() {
		if err := s.sms.SendSMS(ctx, viewer.Phone, DonationThankYouMessage(req)); err != nil {
			return fmt.Errorf("send confirmation sms: %w", err)
		}
		if s.metrics != nil {
			observability.RecordCount(ctx, s.metrics.SMSSent)
		}
	}

	for _, listener := range s.listeners {
		if err := listener.OnDonationConfirmed(ctx, record.UserID, record); err != nil {
			return fmt.Errorf("donation listener: %w", err)
		}
	}
	return nil
}

// RespondBySMS is the offline response: a fixed message to the request's
// contact phone. On failure the view is kept and the error can be retried.
func (s *ResponseService) RespondBySMS(ctx context.Context, userID string) (*ResponseSnapshot, error) {
	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.View != entities.ViewEmergencyDetail || session.Selected == nil {
		return nil, apperrors.NewConflictError("no emergency request is open")
	}
	if s.connectivity.Online(ctx) {
		return nil, apperrors.NewConflictError("SMS responses are only used while offline")
	}

	req := session.Selected
	if err := s.sms.SendSMS(ctx, req.ContactPhone, DonorRespondingMessage(req)); err != nil {
		log.Error().Err(err).Str("request_id", req.ID).Msg("Failed to send SMS response")
		session.Error = smsFailedMessage
		if _, saveErr := s.save(ctx, session); saveErr != nil {
			log.Warn().Err(saveErr).Str("user_id", userID).Msg("Failed to save response session")
		}
		return nil, apperrors.NewExternalError(smsFailedMessage, err)
	}

	if s.metrics != nil {
		observability.RecordCount(ctx, s.metrics.SMSSent)
	}
	session.Error = ""
	session.View = entities.ViewDonationConfirmed
	return s.save(ctx, session)
}

// SendChatMessage appends the user's message and the support channel reply.
// Blank messages are ignored.
func (s *ResponseService) SendChatMessage(ctx context.Context, userID, text string) (*ResponseSnapshot, error) {
	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Selected == nil ||
		(session.View != entities.ViewEmergencyDetail && session.View != entities.ViewDonorConfirmation) {
		return nil, apperrors.NewConflictError("chat is only available while viewing a request")
	}
	if strings.TrimSpace(text) == "" {
		return s.snapshot(ctx, session), nil
	}

	msg := entities.ChatMessage{Text: text, Sender: entities.ChatSenderUser, Timestamp: s.now().UTC()}
	session.ChatMessages = append(session.ChatMessages, msg)

	reply, err := s.support.Reply(ctx, session.Selected, msg)
	if err != nil {
		log.Warn().Err(err).Str("request_id", session.Selected.ID).Msg("Support channel did not reply")
	} else {
		session.ChatMessages = append(session.ChatMessages, reply)
	}

	return s.save(ctx, session)
}

func (s *ResponseService) save(ctx context.Context, session *entities.ResponseSession) (*ResponseSnapshot, error) {
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(ctx, session), nil
}

func (s *ResponseService) snapshot(ctx context.Context, session *entities.ResponseSession) *ResponseSnapshot {
	snap := &ResponseSnapshot{
		View:         session.View,
		Online:       s.connectivity.Online(ctx),
		NearbyDonors: session.NearbyDonors,
		Error:        session.Error,
		ChatMessages: session.ChatMessages,
		Donation:     session.Donation,
	}
	if !session.View.IsKnown() {
		snap.View = entities.ViewError
	}
	if snap.ChatMessages == nil {
		snap.ChatMessages = []entities.ChatMessage{}
	}
	if session.Selected != nil {
		detail := NewEmergencyDetail(*session.Selected, s.now())
		detail.Compatibility = session.Selected.CompatibilityScore(&entities.UserProfile{BloodType: session.ViewerBlood})
		snap.Selected = &detail
	}
	return snap
}

func resetToList(session *entities.ResponseSession) {
	session.View = entities.ViewEmergencyList
	session.Selected = nil
	session.ViewerBlood = ""
	session.NearbyDonors = nil
	session.ChatMessages = nil
	session.Donation = nil
	session.Error = ""
}

// DonorRespondingMessage is the offline SMS sent to the request's contact
func DonorRespondingMessage(req *entities.EmergencyRequest) string {
	return fmt.Sprintf("Donor responding to donate %s blood at %s, %s", req.BloodType, req.Hospital, req.Location)
}

// DonationThankYouMessage is the SMS sent to a donor after confirming
func DonationThankYouMessage(req *entities.EmergencyRequest) string {
	contact := req.ContactPhone
	if contact == "" {
		contact = "Hospital Contact"
	}
	return fmt.Sprintf("Thank you for confirming your donation! Details:\nHospital: %s\nLocation: %s\nBlood Type: %s\nUnits: %d\nContact: %s",
		req.Hospital, req.Location, req.BloodType, req.UnitsRequired(), contact)
}
