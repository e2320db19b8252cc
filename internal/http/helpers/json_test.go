package helpers_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/socis-ca/website/internal/http/helpers"
)

func TestPaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	limit, offset := helpers.Pagination(r)
	if limit != 50 || offset != 0 {
		t.Fatalf("defaults = (%d, %d), want (50, 0)", limit, offset)
	}
}

func TestPaginationClampsAndIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?limit=9999&offset=30", nil)
	limit, offset := helpers.Pagination(r)
	if limit != 200 || offset != 30 {
		t.Fatalf("got (%d, %d), want (200, 30)", limit, offset)
	}

	r = httptest.NewRequest("GET", "/x?limit=abc&offset=-5", nil)
	limit, offset = helpers.Pagination(r)
	if limit != 50 || offset != 0 {
		t.Fatalf("garbage params should fall back to defaults, got (%d, %d)", limit, offset)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}
	r := httptest.NewRequest("POST", "/x", strings.NewReader(`{"email":"a@b.c","extra":1}`))
	if appErr := helpers.DecodeJSON(r, &dst); appErr == nil {
		t.Fatal("unknown field should be rejected")
	}

	r = httptest.NewRequest("POST", "/x", strings.NewReader(`{"email":"a@b.c"}`))
	if appErr := helpers.DecodeJSON(r, &dst); appErr != nil {
		t.Fatalf("valid body rejected: %v", appErr)
	}
	if dst.Email != "a@b.c" {
		t.Fatalf("email = %q", dst.Email)
	}
}

func TestDecodeJSONRejectsBrokenBody(t *testing.T) {
	var dst map[string]any
	r := httptest.NewRequest("POST", "/x", strings.NewReader(`{"email":`))
	if appErr := helpers.DecodeJSON(r, &dst); appErr == nil {
		t.Fatal("broken JSON should be rejected")
	}
}
