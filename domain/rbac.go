package domain

import "time"

// RoleSuperAdmin is the sentinel role that bypasses all permission checks.
const RoleSuperAdmin = "SUPER_ADMIN"

// Role is a named bag of permissions. The role -> permission edges live in
// the policy store; accounts link to roles through per-kind join tables.
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

// AuditEntry is one structured action record: who did what to whom.
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorKind  string    `gorm:"index:idx_audit_actor;size:50" json:"actor_type"`
	ActorID    uint      `gorm:"index:idx_audit_actor" json:"actor_id"`
	TargetKind string    `gorm:"index:idx_audit_target;size:50" json:"target_type"`
	TargetID   uint      `gorm:"index:idx_audit_target" json:"target_id"`
	Action     string    `gorm:"index;size:100" json:"action"`
	Details    string    `gorm:"type:text" json:"details,omitempty"`
	IP         string    `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  string    `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_logs" }
