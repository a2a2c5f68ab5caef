package lease

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
)

// SignerRole represents the capacity in which a party signs a lease
type SignerRole string

const (
	SignerRolePrincipalTenant SignerRole = "PRINCIPAL_TENANT"
	SignerRoleCoTenant        SignerRole = "CO_TENANT"
	SignerRoleGuarantor       SignerRole = "GUARANTOR"
	SignerRoleOwner           SignerRole = "OWNER"
)

// IsValid checks if the role is a valid SignerRole
func (r SignerRole) IsValid() bool {
	switch r {
	case SignerRolePrincipalTenant, SignerRoleCoTenant, SignerRoleGuarantor, SignerRoleOwner:
		return true
	}
	return false
}

// Side returns the inspection side this role signs for
func (r SignerRole) Side() InspectionSide {
	if r == SignerRoleOwner {
		return InspectionSideOwner
	}
	return InspectionSideTenant
}

// SignerStatus represents the signature status of an individual signer
type SignerStatus string

const (
	SignerStatusPending SignerStatus = "PENDING"
	SignerStatusSigned  SignerStatus = "SIGNED"
)

// IsValid checks if the status is a valid SignerStatus
func (s SignerStatus) IsValid() bool {
	return s == SignerStatusPending || s == SignerStatusSigned
}

// SignatureProof is the verifiable reference stored when a party signs:
// hash of the signed content, signer identity, timestamp and device metadata.
// Stored as JSONB on the signer row.
type SignatureProof struct {
	ContentHash    string    `json:"content_hash"`
	SignerIdentity string    `json:"signer_identity"`
	SignedAt       time.Time `json:"signed_at"`
	DeviceMetadata string    `json:"device_metadata,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
}

// IsZero returns true if no proof has been recorded
func (p SignatureProof) IsZero() bool {
	return p.ContentHash == "" && p.SignerIdentity == ""
}

// Validate checks that the proof carries the mandatory fields
func (p SignatureProof) Validate() error {
	if p.ContentHash == "" {
		return shared.NewValidationError("Signature proof requires a content hash")
	}
	if p.SignerIdentity == "" {
		return shared.NewValidationError("Signature proof requires the signer identity")
	}
	return nil
}

// Value implements driver.Valuer for JSONB storage
func (p SignatureProof) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage
func (p *SignatureProof) Scan(value interface{}) error {
	if value == nil {
		*p = SignatureProof{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan SignatureProof: unsupported type")
	}
	if len(bytes) == 0 {
		*p = SignatureProof{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Signer is a party required to sign a lease. Its status moves
// PENDING -> SIGNED exactly once; only the administrative reset can move it
// back, and then only in lockstep with every other signer of the lease.
type Signer struct {
	shared.BaseEntity
	LeaseID           uuid.UUID
	Role              SignerRole
	Status            SignerStatus
	Email             string
	ProfileID         *uuid.UUID
	SignedAt          *time.Time
	Proof             SignatureProof
	InvitationToken   string
	SignatureImageKey string // object-storage key of the handwritten image, if any
}

// NewSigner creates a pending signer with a fresh invitation token
func NewSigner(leaseID uuid.UUID, role SignerRole, email string, profileID *uuid.UUID) (*Signer, error) {
	if !role.IsValid() {
		return nil, shared.NewValidationError("Unknown signer role")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" && profileID == nil {
		return nil, shared.NewValidationError("Signer requires an email or a profile reference")
	}

	return &Signer{
		BaseEntity:      shared.NewBaseEntity(),
		LeaseID:         leaseID,
		Role:            role,
		Status:          SignerStatusPending,
		Email:           email,
		ProfileID:       profileID,
		InvitationToken: uuid.NewString(),
	}, nil
}

// HasSigned returns true once the signer has signed
func (s *Signer) HasSigned() bool {
	return s.Status == SignerStatusSigned
}

// Sign records the signature with its proof. Signing twice is a precondition
// failure: un-signing only happens through the administrative reset.
func (s *Signer) Sign(proof SignatureProof) error {
	if s.HasSigned() {
		return shared.NewPreconditionError("Signer has already signed").
			WithDetail("signer_id", s.ID.String())
	}
	if err := proof.Validate(); err != nil {
		return err
	}
	now := time.Now()
	if proof.SignedAt.IsZero() {
		proof.SignedAt = now
	}
	s.Status = SignerStatusSigned
	s.SignedAt = &now
	s.Proof = proof
	s.UpdatedAt = now
	return nil
}

// ResetToPending clears the signature, its proof and image reference.
// Only the administrative reset may call this, for the whole signer set.
func (s *Signer) ResetToPending() {
	s.Status = SignerStatusPending
	s.SignedAt = nil
	s.Proof = SignatureProof{}
	s.SignatureImageKey = ""
	s.UpdatedAt = time.Now()
}

// ReissueInvitationToken replaces the invitation token for a fresh invite
func (s *Signer) ReissueInvitationToken() string {
	s.InvitationToken = uuid.NewString()
	s.UpdatedAt = time.Now()
	return s.InvitationToken
}

// HasContact returns true if the signer can receive an invitation
func (s *Signer) HasContact() bool {
	return s.Email != ""
}

// Matches reports whether the signer refers to the same party, by profile
// identity or by contact address.
func (s *Signer) Matches(email string, profileID *uuid.UUID) bool {
	if profileID != nil && s.ProfileID != nil && *s.ProfileID == *profileID {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	return email != "" && s.Email == email
}

// FullySigned reports whether the signer set qualifies the lease as fully
// signed: every signer has signed and at least one signer exists.
func FullySigned(signers []Signer) bool {
	if len(signers) == 0 {
		return false
	}
	for i := range signers {
		if !signers[i].HasSigned() {
			return false
		}
	}
	return true
}

// AnySigned reports whether at least one signer has signed
func AnySigned(signers []Signer) bool {
	for i := range signers {
		if signers[i].HasSigned() {
			return true
		}
	}
	return false
}

// HasPrincipalTenant reports whether the set already contains the principal tenant
func HasPrincipalTenant(signers []Signer) bool {
	for i := range signers {
		if signers[i].Role == SignerRolePrincipalTenant {
			return true
		}
	}
	return false
}

// ContainsParty reports whether the set already contains the invited party
func ContainsParty(signers []Signer, email string, profileID *uuid.UUID) bool {
	for i := range signers {
		if signers[i].Matches(email, profileID) {
			return true
		}
	}
	return false
}
