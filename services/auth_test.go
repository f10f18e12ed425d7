package services

import (
	"testing"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

func TestAuthorizeAdminPageAnonymous(t *testing.T) {
	decision := AuthorizeAdminPage(nil, "/admin/stories?status=DRAFT")

	if decision.Allowed {
		t.Fatal("anonymous callers must not reach admin pages")
	}
	want := shared.SignInPath + "?callbackUrl=%2Fadmin%2Fstories%3Fstatus%3DDRAFT"
	if decision.RedirectTarget != want {
		t.Errorf("redirect = %q, want %q", decision.RedirectTarget, want)
	}
}

func TestAuthorizeAdminPageAnonymousWithoutURL(t *testing.T) {
	decision := AuthorizeAdminPage(nil, "")

	if decision.Allowed {
		t.Fatal("anonymous callers must not reach admin pages")
	}
	if decision.RedirectTarget != shared.SignInPath {
		t.Errorf("redirect = %q, want plain sign-in path with no callback", decision.RedirectTarget)
	}
}

func TestAuthorizeAdminPageEmptyIdentity(t *testing.T) {
	// An identity with no user id is anonymous, not forbidden.
	decision := AuthorizeAdminPage(&dto.Identity{}, "/admin")

	if decision.Allowed {
		t.Fatal("an empty identity must not reach admin pages")
	}
	if decision.RedirectTarget == shared.UnauthorizedPath {
		t.Error("an empty identity should go to sign-in, not the unauthorized page")
	}
}

func TestAuthorizeAdminPageNonAdmin(t *testing.T) {
	identity := &dto.Identity{UserID: "u-1", Role: shared.RoleUser}

	decision := AuthorizeAdminPage(identity, "/admin/stories")

	if decision.Allowed {
		t.Fatal("signed-in non-admins must not reach admin pages")
	}
	if decision.RedirectTarget != shared.UnauthorizedPath {
		t.Errorf("redirect = %q, want %q", decision.RedirectTarget, shared.UnauthorizedPath)
	}
}

func TestAuthorizeAdminPageAdmin(t *testing.T) {
	identity := &dto.Identity{UserID: "u-1", Role: shared.RoleAdmin}

	decision := AuthorizeAdminPage(identity, "/admin/stories")

	if !decision.Allowed {
		t.Fatal("admins should pass the gate")
	}
	if decision.RedirectTarget != "" {
		t.Errorf("redirect = %q, want empty for an allowed caller", decision.RedirectTarget)
	}
}
