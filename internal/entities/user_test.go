package entities

import (
	"testing"
	"time"
)

func TestUser_PendingExpired(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		verified bool
		now      time.Time
		want     bool
	}{
		{"fresh pending", false, created.Add(time.Hour), false},
		{"pending just before ttl", false, created.Add(PendingTTL - time.Second), false},
		{"pending at ttl", false, created.Add(PendingTTL), true},
		{"verified never expires", true, created.Add(30 * PendingTTL), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{IsVerified: tt.verified, CreatedAt: created}
			if got := u.PendingExpired(tt.now); got != tt.want {
				t.Errorf("PendingExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_HasLocalPassword(t *testing.T) {
	hash := "$2a$10$abc"
	empty := ""

	if (&User{}).HasLocalPassword() {
		t.Error("nil hash should mean no local password")
	}
	if (&User{PasswordHash: &empty}).HasLocalPassword() {
		t.Error("empty hash should mean no local password")
	}
	if !(&User{PasswordHash: &hash}).HasLocalPassword() {
		t.Error("bcrypt hash should be a local password")
	}
}
