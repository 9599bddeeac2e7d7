package tracker

import (
	"context"
	"errors"
	"fmt"
)

// EntitlementGateway is the remote licensing and checkout service.
// Implementations report transport, status and decoding failures as errors
// and never guess success.
type EntitlementGateway interface {
	Activate(ctx context.Context, req ActivateRequest) (*ActivateResponse, error)
	Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error)
	Deactivate(ctx context.Context, req DeactivateRequest) (*DeactivateResponse, error)
	GenerateCheckoutSession(ctx context.Context) (*CheckoutSession, error)
}

type ActivateRequest struct {
	Key          string `json:"key"`
	InstanceName string `json:"instanceName"`
}

type ActivateResponse struct {
	IsActivated bool    `json:"isActivated"`
	InstanceID  *string `json:"instanceId"`
}

type ValidateRequest struct {
	LicenseKey string `json:"licenseKey"`
	InstanceID string `json:"instanceId"`
}

type ValidateResponse struct {
	IsValid bool `json:"isValid"`
}

type DeactivateRequest struct {
	LicenseKey string `json:"licenseKey"`
	InstanceID string `json:"instanceId"`
}

type DeactivateResponse struct {
	IsDeactivated bool `json:"isDeactivated"`
}

// CheckoutSession is a purchase session created by the licensing backend.
type CheckoutSession struct {
	ID          string  `json:"id"`
	Object      string  `json:"object"`
	Product     string  `json:"product"`
	Units       *string `json:"units"`
	Status      string  `json:"status"`
	CheckoutURL string  `json:"checkoutUrl"`
	Mode        string  `json:"mode"`
}

// License is an activated key bound to this installation.
type License struct {
	Key        string `json:"key"`
	InstanceID string `json:"instanceId"`
}

// ErrNoLicense is returned by a LicenseStore holding no license.
var ErrNoLicense = errors.New("no license stored")

// LicenseStore remembers the activated license between runs.
type LicenseStore interface {
	Load() (*License, error)
	Save(license License) error
	Delete() error
}

// LicenseService shapes entitlement requests and keeps the local license record
// in step with the remote answers.
type LicenseService struct {
	gateway      EntitlementGateway
	store        LicenseStore
	logger       Logger
	instanceName string
}

// NewLicenseService creates a LicenseService. instanceName is the default name
// this installation registers under.
func NewLicenseService(gateway EntitlementGateway, store LicenseStore, logger Logger, instanceName string) *LicenseService {
	return &LicenseService{
		gateway:      gateway,
		store:        store,
		logger:       logger,
		instanceName: instanceName,
	}
}

// Activate registers key for this installation and stores it on success.
func (s *LicenseService) Activate(ctx context.Context, req ActivateRequest) (*ActivateResponse, error) {
	if req.Key == "" {
		return nil, Invalid("activate license", errors.New("license key is required"))
	}
	if req.InstanceName == "" {
		req.InstanceName = s.instanceName
	}

	resp, err := s.gateway.Activate(ctx, req)
	if err != nil {
		return nil, RemoteFailure("activate license", err)
	}

	if resp.IsActivated && resp.InstanceID != nil {
		if err := s.store.Save(License{Key: req.Key, InstanceID: *resp.InstanceID}); err != nil {
			s.logger.Error("failed to store activated license", "instance_id", *resp.InstanceID, "error", err)
			return nil, StorageFailure("activate license", fmt.Errorf("storing license: %w", err))
		}
	}

	s.logger.Info("license activation", "activated", resp.IsActivated, "instance_name", req.InstanceName)
	return resp, nil
}

// Validate checks a license. Missing fields fall back to the stored license.
func (s *LicenseService) Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error) {
	key, instanceID, err := s.resolve("validate license", req.LicenseKey, req.InstanceID)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.Validate(ctx, ValidateRequest{LicenseKey: key, InstanceID: instanceID})
	if err != nil {
		return nil, RemoteFailure("validate license", err)
	}

	s.logger.Info("license validation", "valid", resp.IsValid)
	return resp, nil
}

// Deactivate releases a license and forgets it locally on success.
func (s *LicenseService) Deactivate(ctx context.Context, req DeactivateRequest) (*DeactivateResponse, error) {
	key, instanceID, err := s.resolve("deactivate license", req.LicenseKey, req.InstanceID)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.Deactivate(ctx, DeactivateRequest{LicenseKey: key, InstanceID: instanceID})
	if err != nil {
		return nil, RemoteFailure("deactivate license", err)
	}

	if resp.IsDeactivated {
		if err := s.store.Delete(); err != nil && !errors.Is(err, ErrNoLicense) {
			s.logger.Warn("failed to forget deactivated license", "error", err)
		}
	}

	s.logger.Info("license deactivation", "deactivated", resp.IsDeactivated)
	return resp, nil
}

// GenerateCheckoutSession asks the backend for a purchase URL.
func (s *LicenseService) GenerateCheckoutSession(ctx context.Context) (*CheckoutSession, error) {
	session, err := s.gateway.GenerateCheckoutSession(ctx)
	if err != nil {
		return nil, RemoteFailure("generate checkout session", err)
	}
	if session.CheckoutURL == "" {
		return nil, RemoteFailure("generate checkout session", errors.New("response has no checkout url"))
	}
	return session, nil
}

// resolve fills empty key and instance id from the stored license.
func (s *LicenseService) resolve(op, key, instanceID string) (string, string, error) {
	if key != "" && instanceID != "" {
		return key, instanceID, nil
	}

	stored, err := s.store.Load()
	if errors.Is(err, ErrNoLicense) {
		return "", "", Invalid(op, errors.New("license key and instance id are required"))
	}
	if err != nil {
		return "", "", StorageFailure(op, fmt.Errorf("loading stored license: %w", err))
	}

	if key == "" {
		key = stored.Key
	}
	if instanceID == "" {
		instanceID = stored.InstanceID
	}
	return key, instanceID, nil
}
