package viewdata

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/postboard/internal/app/system/auth"
)

func TestNewBaseVM_Anonymous(t *testing.T) {
	r := httptest.NewRequest("GET", "/group/cats", nil)
	vm := NewBaseVM(r, "Cats", "/")

	if vm.IsLoggedIn || vm.IsAdmin || vm.Username != "" {
		t.Errorf("anonymous vm = %+v", vm)
	}
	if vm.Title != "Cats" || vm.SiteName == "" {
		t.Errorf("Title=%q SiteName=%q", vm.Title, vm.SiteName)
	}
}

func TestNewBaseVM_SignedIn(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Username: "leo", Role: "admin"})
	vm := NewBaseVM(r, "Home", "/")

	if !vm.IsLoggedIn || !vm.IsAdmin {
		t.Errorf("IsLoggedIn=%v IsAdmin=%v", vm.IsLoggedIn, vm.IsAdmin)
	}
	if vm.Username != "leo" || vm.UserName != "leo" {
		t.Errorf("Username=%q UserName=%q, want name to fall back to username", vm.Username, vm.UserName)
	}
}

func TestSetSiteName(t *testing.T) {
	t.Cleanup(func() { SetSiteName(DefaultSiteName) })
	SetSiteName("Yatube")
	SetSiteName("")
	vm := NewBaseVM(httptest.NewRequest("GET", "/", nil), "", "/")
	if vm.SiteName != "Yatube" {
		t.Errorf("SiteName = %q, want Yatube", vm.SiteName)
	}
}
