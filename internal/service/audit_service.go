package service

import (
	"context"
	"sync"

	"pos-terminal/internal/models"
	"pos-terminal/internal/util"
)

type AuditBackend interface {
	ListAuditLogs(ctx context.Context, token string) ([]models.AuditLog, error)
}

// FieldChange is one product attribute that an UPDATE changed.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// AuditEntry is an audit log with the product name and the effective changes resolved.
type AuditEntry struct {
	models.AuditLog
	ProductName       string        `json:"productName"`
	FieldChanges      []FieldChange `json:"fieldChanges,omitempty"`
	NoEffectiveChange bool          `json:"noEffectiveChange,omitempty"`
}

type AuditService struct {
	backend AuditBackend
	auth    *AuthService

	mu      sync.RWMutex
	entries []AuditEntry
	seq     fetchSeq
}

func NewAuditService(backend AuditBackend, auth *AuthService) *AuditService {
	return &AuditService{backend: backend, auth: auth, entries: []AuditEntry{}}
}

func (s *AuditService) Fetch(ctx context.Context) ([]AuditEntry, error) {
	ctx, span := util.StartSpan(ctx, "AuditService.Fetch")
	defer span.End()

	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	ticket := s.seq.ticket()
	logs, err := s.backend.ListAuditLogs(ctx, token)
	if err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, Describe(l))
	}

	s.mu.Lock()
	if s.seq.accept(ticket) {
		s.entries = entries
	}
	out := make([]AuditEntry, len(s.entries))
	copy(out, s.entries)
	s.mu.Unlock()
	return out, nil
}

// Describe resolves the product name at the time of the change and, for updates,
// the fields whose value actually differs.
func Describe(l models.AuditLog) AuditEntry {
	entry := AuditEntry{AuditLog: l, ProductName: auditProductName(l)}
	if l.Action != models.AuditActionUpdate {
		return entry
	}

	oldSnap, newSnap := l.Changes.Old, l.Changes.New
	if oldSnap == nil {
		oldSnap = &models.ProductSnapshot{}
	}
	if newSnap == nil {
		newSnap = &models.ProductSnapshot{}
	}

	if newSnap.Name != nil && (oldSnap.Name == nil || *oldSnap.Name != *newSnap.Name) {
		entry.FieldChanges = append(entry.FieldChanges, FieldChange{Field: "name", Old: deref(oldSnap.Name), New: *newSnap.Name})
	}
	if newSnap.Price != nil && (oldSnap.Price == nil || *oldSnap.Price != *newSnap.Price) {
		old := ""
		if oldSnap.Price != nil {
			old = util.FormatVND(*oldSnap.Price)
		}
		entry.FieldChanges = append(entry.FieldChanges, FieldChange{Field: "price", Old: old, New: util.FormatVND(*newSnap.Price)})
	}
	if newSnap.Image != nil && (oldSnap.Image == nil || *oldSnap.Image != *newSnap.Image) {
		entry.FieldChanges = append(entry.FieldChanges, FieldChange{Field: "image", Old: deref(oldSnap.Image), New: *newSnap.Image})
	}
	entry.NoEffectiveChange = len(entry.FieldChanges) == 0
	return entry
}

func auditProductName(l models.AuditLog) string {
	primary, fallback := l.Changes.New, l.Changes.Old
	if l.Action == models.AuditActionDelete {
		primary, fallback = fallback, primary
	}
	if primary != nil && primary.Name != nil {
		return *primary.Name
	}
	if l.Product != "" {
		return l.Product
	}
	if fallback != nil && fallback.Name != nil {
		return *fallback.Name
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
