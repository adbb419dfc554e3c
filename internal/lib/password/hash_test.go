package password

import (
	"errors"
	"testing"
)

func TestGetHash_RoundTrip(t *testing.T) {
	for _, pw := range []string{"password123", "p@ssw0rd!@#$%^&*()", "short"} {
		hash, err := GetHash(pw)
		if err != nil {
			t.Fatalf("GetHash(%q) error = %v", pw, err)
		}
		if hash == pw {
			t.Errorf("GetHash(%q) returned the password itself", pw)
		}
		if err = CompareHash(hash, pw); err != nil {
			t.Errorf("CompareHash() for %q error = %v", pw, err)
		}
	}
}

func TestCompareHash(t *testing.T) {
	hash, err := GetHash("correct_password")
	if err != nil {
		t.Fatalf("GetHash() error = %v", err)
	}

	tests := []struct {
		name         string
		hash         string
		password     string
		wantMismatch bool
		wantErr      bool
	}{
		{"matching", hash, "correct_password", false, false},
		{"wrong password", hash, "wrong_password", true, true},
		{"empty password", hash, "", true, true},
		{"broken hash", "not-a-bcrypt-hash", "correct_password", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompareHash(tt.hash, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CompareHash() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, ErrMismatch); got != tt.wantMismatch {
				t.Errorf("errors.Is(err, ErrMismatch) = %v, want %v", got, tt.wantMismatch)
			}
		})
	}
}
