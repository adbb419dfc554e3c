package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harmonyeco/gec-subscriptions/internal/models"
)

func user(id string, phone *string) models.User {
	return models.User{ID: id, Phone: phone}
}

func str(s string) *string { return &s }

func ids(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"06 01 02 03 04", "0601020304"},
		{"+261 (34) 12-345-67", "261341234567"},
		{"abc", ""},
		{"", ""},
		{"0601", "0601"},
		{"٠٣٤ 12", "12"},
		{"０３４", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Digits(tt.in), "Digits(%q)", tt.in)
	}
}

func TestDisplayable(t *testing.T) {
	users := []models.User{
		user("a", str("034 00 000 01")),
		user("b", nil),
		user("c", str("")),
		user("d", str("   ")),
		user("e", str("0601020304")),
	}

	got := Displayable(users)

	assert.Equal(t, []string{"a", "e"}, ids(got))
}

func TestFilterByPhone(t *testing.T) {
	users := []models.User{
		user("a", str("06 01 02 03 04")),
		user("b", str("034 12 345 67")),
		user("c", nil),
		user("d", str("+33 6 01 99 99 99")),
		user("e", str("0601")),
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns all", "", []string{"a", "b", "c", "d", "e"}},
		{"query without digits returns all", "abc -", []string{"a", "b", "c", "d", "e"}},
		{"digits ignore separators on both sides", "0601", []string{"a", "e"}},
		{"query with separators", "06-01 02", []string{"a"}},
		{"substring in the middle", "601", []string{"a", "d", "e"}},
		{"no match", "999999999999", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByPhone(users, tt.query)))
		})
	}
}

func TestFilterByPhone_EmptyQueryReturnsSameSlice(t *testing.T) {
	users := []models.User{user("b", str("2")), user("a", str("1"))}

	got := FilterByPhone(users, "")

	assert.Equal(t, users, got)
	assert.Same(t, &users[0], &got[0])
}
