package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/cache"
	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/evolution"
	"github.com/matheuspina/avaliatec/internal/crm/saga"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/idx"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

var (
	ErrInvalidInstanceName = errors.New("instance name must be 3-50 characters of a-z, 0-9, _ or -")
	ErrInstanceNotFound    = errors.New("instance not found")
	ErrGatewayUnavailable  = errors.New("whatsapp gateway unavailable")
)

var instanceNameRe = regexp.MustCompile(`^[a-z0-9_-]{3,50}$`)

const instanceCacheTTL = 5 * time.Minute

// Gateway is the WhatsApp gateway surface the services use.
type Gateway interface {
	CreateInstance(ctx context.Context, name string) (*evolution.CreateInstanceResponse, error)
	SetWebhook(ctx context.Context, name, url string) error
	Connect(ctx context.Context, name string) (*evolution.QRCode, error)
	Logout(ctx context.Context, name string) error
	DeleteInstance(ctx context.Context, name string) error
	SendText(ctx context.Context, instance, number, text string) (*evolution.SendTextResponse, error)
}

type InstanceService struct {
	Store   store.Store
	Gateway Gateway
	Cache   cache.Cache[domain.Instance]
	Saga    saga.Runner

	// WebhookURL is registered on every new instance. Empty skips the step.
	WebhookURL string
}

type InstanceInput struct {
	Name        string
	DisplayName string
}

func instanceKey(name string) string { return "instance:" + name }

func (s *InstanceService) List(ctx context.Context) ([]domain.Instance, error) {
	return s.Store.Instances().ListInstances(ctx)
}

func (s *InstanceService) Get(ctx context.Context, id string) (domain.Instance, error) {
	inst, err := s.Store.Instances().GetInstanceByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Instance{}, ErrInstanceNotFound
	}
	return inst, err
}

// ByName looks an instance up by its gateway name through the cache.
func (s *InstanceService) ByName(ctx context.Context, name string) (domain.Instance, error) {
	if s.Cache != nil {
		if inst, ok, err := s.Cache.Get(ctx, instanceKey(name)); err == nil && ok {
			return inst, nil
		}
	}

	inst, err := s.Store.Instances().GetInstanceByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Instance{}, ErrInstanceNotFound
	}
	if err != nil {
		return domain.Instance{}, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, instanceKey(name), inst, instanceCacheTTL); err != nil {
			slogx.FromContext(ctx).Warn("instance cache write failed", slog.String("instance", name), slog.Any("error", err))
		}
	}
	return inst, nil
}

func (s *InstanceService) forget(ctx context.Context, name string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, instanceKey(name)); err != nil {
		slogx.FromContext(ctx).Warn("instance cache delete failed", slog.String("instance", name), slog.Any("error", err))
	}
}

// Create provisions the instance on the gateway, registers the webhook and
// persists it. A failure undoes the gateway side.
func (s *InstanceService) Create(ctx context.Context, actorID string, in InstanceInput) (domain.Instance, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate
	name := strings.TrimSpace(in.Name)
	if !instanceNameRe.MatchString(name) {
		return domain.Instance{}, ErrInvalidInstanceName
	}
	if _, err := s.Store.Instances().GetInstanceByName(ctx, name); err == nil {
		return domain.Instance{}, ErrNameExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Instance{}, err
	}

	inst := domain.Instance{
		ID:          idx.New().String(),
		Name:        name,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Status:      domain.InstanceCreated,
	}
	if inst.DisplayName == "" {
		inst.DisplayName = name
	}
	if actorID != "" {
		inst.CreatedBy = &actorID
	}

	// 2. Run the provisioning pipeline
	err := s.Saga.Run(ctx,
		saga.Step{
			Name: "create_gateway_instance",
			Do: func(ctx context.Context) error {
				resp, err := s.Gateway.CreateInstance(ctx, name)
				if err != nil {
					return err
				}
				inst.QRCode = resp.QRCode.Image()
				return nil
			},
			Compensate: func(ctx context.Context) error {
				err := s.Gateway.DeleteInstance(ctx, name)
				if evolution.IsNotFound(err) {
					return nil
				}
				return err
			},
		},
		saga.Step{
			Name: "register_webhook",
			Do: func(ctx context.Context) error {
				if s.WebhookURL == "" {
					return nil
				}
				return s.Gateway.SetWebhook(ctx, name, s.WebhookURL)
			},
		},
		saga.Step{
			Name: "persist_instance",
			Do: func(ctx context.Context) error {
				err := s.Store.Instances().CreateInstance(ctx, inst)
				if errors.Is(err, store.ErrAlreadyExists) {
					return ErrNameExists
				}
				return err
			},
		},
	)
	if err != nil {
		log.Error("failed to create instance", slog.String("instance", name), slog.Any("error", err))
		return domain.Instance{}, err
	}

	log.Info("instance created", slog.String("instance_id", inst.ID), slog.String("instance", name))
	return inst, nil
}

// Connect asks the gateway for a pairing QR code and stores it.
func (s *InstanceService) Connect(ctx context.Context, id string) (domain.Instance, error) {
	inst, err := s.Get(ctx, id)
	if err != nil {
		return domain.Instance{}, err
	}

	qr, err := s.Gateway.Connect(ctx, inst.Name)
	if err != nil {
		slogx.FromContext(ctx).Error("gateway connect failed", slog.String("instance", inst.Name), slog.Any("error", err))
		return domain.Instance{}, err
	}

	inst.QRCode = qr.Image()
	inst.Status = domain.InstanceConnecting
	if err := s.Store.Instances().UpdateInstanceQRCode(ctx, inst.ID, inst.QRCode); err != nil {
		return domain.Instance{}, err
	}
	if err := s.Store.Instances().UpdateInstanceStatus(ctx, inst.ID, inst.Status); err != nil {
		return domain.Instance{}, err
	}
	s.forget(ctx, inst.Name)
	return inst, nil
}

// Disconnect logs the instance out of WhatsApp. A gateway 404 counts as done.
func (s *InstanceService) Disconnect(ctx context.Context, id string) (domain.Instance, error) {
	inst, err := s.Get(ctx, id)
	if err != nil {
		return domain.Instance{}, err
	}

	if err := s.Gateway.Logout(ctx, inst.Name); err != nil && !evolution.IsNotFound(err) {
		slogx.FromContext(ctx).Error("gateway logout failed", slog.String("instance", inst.Name), slog.Any("error", err))
		return domain.Instance{}, err
	}

	if err := s.SetStatus(ctx, inst, domain.InstanceDisconnected); err != nil {
		return domain.Instance{}, err
	}
	if err := s.Store.Instances().UpdateInstanceQRCode(ctx, inst.ID, ""); err != nil {
		return domain.Instance{}, err
	}
	inst.Status = domain.InstanceDisconnected
	inst.QRCode = ""
	return inst, nil
}

// Delete removes the instance locally even when the gateway refuses.
func (s *InstanceService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	inst, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Gateway.DeleteInstance(ctx, inst.Name); err != nil && !evolution.IsNotFound(err) {
		log.Warn("gateway delete failed, removing locally", slog.String("instance", inst.Name), slog.Any("error", err))
	}

	if err := s.Store.Instances().DeleteInstance(ctx, inst.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInstanceNotFound
		}
		return err
	}
	s.forget(ctx, inst.Name)

	log.Info("instance deleted", slog.String("instance_id", inst.ID), slog.String("instance", inst.Name))
	return nil
}

// SetStatus records a connection state change.
func (s *InstanceService) SetStatus(ctx context.Context, inst domain.Instance, status domain.InstanceStatus) error {
	if err := s.Store.Instances().UpdateInstanceStatus(ctx, inst.ID, status); err != nil {
		return err
	}
	s.forget(ctx, inst.Name)
	return nil
}

func (s *InstanceService) SetQRCode(ctx context.Context, inst domain.Instance, qr string) error {
	if err := s.Store.Instances().UpdateInstanceQRCode(ctx, inst.ID, qr); err != nil {
		return err
	}
	s.forget(ctx, inst.Name)
	return nil
}

func (s *InstanceService) SetPhone(ctx context.Context, inst domain.Instance, phone string) error {
	if err := s.Store.Instances().UpdateInstancePhone(ctx, inst.ID, phone); err != nil {
		return err
	}
	s.forget(ctx, inst.Name)
	return nil
}
