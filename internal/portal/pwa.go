package portal

import (
	"strconv"
	"time"
)

// InstallSuppression is how long a dismissed install prompt stays hidden.
const InstallSuppression = 24 * time.Hour

// InstallPrompt tracks whether the install prompt may be shown.
type InstallPrompt struct {
	storage Storage
	now     func() time.Time
}

// NewInstallPrompt builds a prompt state over storage.
func NewInstallPrompt(storage Storage, now func() time.Time) *InstallPrompt {
	if now == nil {
		now = time.Now
	}
	return &InstallPrompt{storage: storage, now: now}
}

// ShouldShow is false within InstallSuppression of the last dismissal.
func (p *InstallPrompt) ShouldShow() bool {
	raw, ok, err := p.storage.GetItem(KeyInstallDismiss)
	if err != nil || !ok {
		return true
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	return p.now().Sub(time.UnixMilli(ms)) >= InstallSuppression
}

// Dismiss records a dismissal now.
func (p *InstallPrompt) Dismiss() error {
	return p.storage.SetItem(KeyInstallDismiss, strconv.FormatInt(p.now().UnixMilli(), 10))
}

// Installed clears the dismissal record.
func (p *InstallPrompt) Installed() error {
	return p.storage.RemoveItem(KeyInstallDismiss)
}
