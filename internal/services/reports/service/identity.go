package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reportrelay/internal/core/version"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"
	"reportrelay/internal/services/reports/domain"
)

// Settings keys for the client identity
const (
	SettingClientID    = "client_id"
	SettingClientLabel = "client_label"
)

// Identities hands out the stable client identity, generating it on first use
type Identities struct {
	store domain.Settings

	mu     sync.Mutex
	cached *domain.Identity

	newID func() string
}

// NewIdentities builds an identity provider over a settings store
func NewIdentities(store domain.Settings) *Identities {
	return &Identities{
		store: store,
		newID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Identity returns the persisted identity, creating and saving it once
func (i *Identities) Identity(ctx context.Context) (domain.Identity, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cached != nil {
		return *i.cached, nil
	}

	id, ok, err := i.store.GetSetting(ctx, SettingClientID)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok || id == "" {
		id = "cid-" + i.newID()
		if err := i.store.PutSetting(ctx, SettingClientID, id); err != nil {
			return domain.Identity{}, err
		}
	}

	label, ok, err := i.store.GetSetting(ctx, SettingClientLabel)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok || label == "" {
		label = "Machine-" + id[max(0, len(id)-4):]
		if err := i.store.PutSetting(ctx, SettingClientLabel, label); err != nil {
			return domain.Identity{}, err
		}
	}

	i.cached = &domain.Identity{ClientID: id, Label: label}
	return *i.cached, nil
}

// Connector registers the relay with the sink
type Connector struct {
	ids    domain.IdentityPort
	reg    domain.Registrar
	shopID string
	now    func() time.Time
}

// NewConnector builds a connector
func NewConnector(ids domain.IdentityPort, reg domain.Registrar, shopID string) *Connector {
	return &Connector{ids: ids, reg: reg, shopID: shopID, now: time.Now}
}

// Connect sends the registration and returns what was sent and the sink answer
func (c *Connector) Connect(ctx context.Context, autoEnabled bool) (domain.Registration, domain.SinkResult, error) {
	id, err := c.ids.Identity(ctx)
	if err != nil {
		return domain.Registration{}, domain.SinkResult{}, perr.Wrap(err, perr.ErrorCodeDB, "load client identity")
	}
	reg := domain.Registration{
		ClientID:    id.ClientID,
		Label:       id.Label,
		ShopID:      c.shopID,
		Version:     version.ClientVersion(),
		UserAgent:   version.UserAgent(),
		AutoEnabled: autoEnabled,
		ConnectedAt: c.now().UTC(),
	}
	res, err := c.reg.Connect(ctx, reg)
	if err != nil {
		return reg, domain.SinkResult{}, err
	}
	logger.C(ctx).Info().Str("client_id", reg.ClientID).Str("shop_id", reg.ShopID).Msg("client registered")
	return reg, res, nil
}
