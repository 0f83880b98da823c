package domain

import "time"

// Mode identifies who initiated a deletion run.
type Mode string

const (
	ModeSelf  Mode = "self"
	ModeAdmin Mode = "admin"
	ModeSweep Mode = "sweep"
)

// Scope is how much of an account's footprint a run removes.
type Scope string

const (
	// ScopeFull removes the profile and every owned recipe, comment,
	// notification and like.
	ScopeFull Scope = "full"
	// ScopeProfile removes only the profile document. Administrator
	// deletions use it; owned content is left in place.
	ScopeProfile Scope = "profile"
)

func (s Scope) Valid() bool {
	return s == ScopeFull || s == ScopeProfile
}

// Stage names the step of the pipeline a failure happened in.
type Stage string

const (
	StageAuthorize Stage = "authorize"
	StageGather    Stage = "gather"
	StageBatch     Stage = "batch"
	StageIdentity  Stage = "identity"
)

// OwnedCollection is a collection whose documents point at their owner's uid.
type OwnedCollection struct {
	Name  string
	Field string
}

// CascadeCollections are swept on a full-scope deletion.
var CascadeCollections = []OwnedCollection{
	{Name: "recipes", Field: "createdBy"},
	{Name: "comments", Field: "userId"},
	{Name: "notifications", Field: "userId"},
	{Name: "likes", Field: "userId"},
}

// Result reports how far a deletion run got.
type Result struct {
	UID                 string `json:"uid"`
	Scope               Scope  `json:"scope"`
	DocumentsDeleted    int    `json:"documents_deleted"`
	BatchesPlanned      int    `json:"batches_planned"`
	BatchesCommitted    int    `json:"batches_committed"`
	IdentityDeleted     bool   `json:"identity_deleted"`
	IdentityAlreadyGone bool   `json:"identity_already_gone,omitempty"`
}

// IdentityGone reports whether no login remains for the account.
func (r *Result) IdentityGone() bool {
	return r != nil && (r.IdentityDeleted || r.IdentityAlreadyGone)
}

// PendingIdentity is an account whose data was removed but whose
// Authentication record could not be deleted yet.
type PendingIdentity struct {
	UID       string    `json:"uid"`
	Scope     Scope     `json:"scope"`
	Stage     Stage     `json:"stage"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
}

// AuditEntry is one recorded deletion attempt.
type AuditEntry struct {
	ID               string    `json:"id"`
	ActorUID         string    `json:"actor_uid"`
	TargetUID        string    `json:"target_uid"`
	Mode             Mode      `json:"mode"`
	Outcome          string    `json:"outcome"`
	Stage            Stage     `json:"stage,omitempty"`
	BatchesCommitted int       `json:"batches_committed"`
	DocumentsDeleted int       `json:"documents_deleted"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

const (
	OutcomeSuccess         = "success"
	OutcomeFailed          = "failed"
	OutcomeIdentityPending = "identity_pending"
)
