package service

import (
	"context"
	"testing"

	"agora/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func TestUserServiceUpdateProfileUsernameTaken(t *testing.T) {
	users := noopUserRepo()
	users.getForUpdateFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "old_name"}, nil
	}
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		return &models.User{ID: 77, Username: username}, nil
	}

	svc := NewUserService(users, noopPostRepo(), noopObjectStore())
	_, err := svc.UpdateOwnProfile(context.Background(), 1, UpdateProfileInput{Username: strPtr("taken_name")})
	assertAppError(t, err, models.CodeConflict)
}

func TestUserServiceUpdateProfileInvalidUsername(t *testing.T) {
	users := noopUserRepo()
	users.getForUpdateFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "old_name"}, nil
	}

	svc := NewUserService(users, noopPostRepo(), noopObjectStore())
	_, err := svc.UpdateOwnProfile(context.Background(), 1, UpdateProfileInput{Username: strPtr("x")})
	assertAppError(t, err, models.CodeBadRequest)
}

func TestUserServiceUpdateProfileRehashesPassword(t *testing.T) {
	var saved *models.User
	users := noopUserRepo()
	users.getForUpdateFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "old_name", Password: "old-hash"}, nil
	}
	users.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}

	svc := NewUserService(users, noopPostRepo(), noopObjectStore())
	const newPassword = "Str0ng!Passw0rd"
	_, err := svc.UpdateOwnProfile(context.Background(), 1, UpdateProfileInput{Password: strPtr(newPassword)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil || saved.Password == "old-hash" || saved.Password == newPassword {
		t.Fatalf("password must be stored as a fresh hash, got %#v", saved)
	}
	if bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte(newPassword)) != nil {
		t.Fatal("stored hash does not verify against the new password")
	}
}

func TestUserServiceUpdateProfileStartsFromStoredRow(t *testing.T) {
	var saved *models.User
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		// A cache round-trip strips the password hash.
		return &models.User{ID: id, Username: "old_name"}, nil
	}
	users.getForUpdateFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "old_name", Password: "stored-hash", Reputation: 4}, nil
	}
	users.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}

	svc := NewUserService(users, noopPostRepo(), noopObjectStore())
	_, err := svc.UpdateOwnProfile(context.Background(), 1, UpdateProfileInput{Name: strPtr("Eleni")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil || saved.Password != "stored-hash" {
		t.Fatalf("update must carry the stored password hash, got %#v", saved)
	}
}

func TestUserServiceUpdateProfileWeakPassword(t *testing.T) {
	users := noopUserRepo()
	users.getForUpdateFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "old_name"}, nil
	}

	svc := NewUserService(users, noopPostRepo(), noopObjectStore())
	_, err := svc.UpdateOwnProfile(context.Background(), 1, UpdateProfileInput{Password: strPtr("short")})
	assertAppError(t, err, models.CodeBadRequest)
}

func TestUserServiceDeleteProfileRemovesPhotoObjectsFirst(t *testing.T) {
	var order []string
	users := noopUserRepo()
	users.deleteFn = func(context.Context, uint) error {
		order = append(order, "db")
		return nil
	}

	posts := noopPostRepo()
	posts.getByUserIDFn = func(_ context.Context, _ uint, includePrivate bool, _, offset int) ([]models.Post, error) {
		if !includePrivate {
			t.Fatal("deletion must sweep private posts too")
		}
		if offset > 0 {
			return nil, nil
		}
		return []models.Post{
			{ID: 1, Photos: []models.Photo{{URL: "/media/a.webp"}, {URL: "/media/b.webp"}}},
		}, nil
	}

	store := noopObjectStore()
	store.deleteFn = func(_ context.Context, url string) error {
		order = append(order, "store:"+url)
		return nil
	}

	svc := NewUserService(users, posts, store)
	if err := svc.DeleteOwnProfile(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"store:/media/a.webp", "store:/media/b.webp", "db"}
	if len(order) != len(want) {
		t.Fatalf("unexpected call order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("call %d: got %s, want %s", i, order[i], want[i])
		}
	}
}

func TestUserServiceSearchEmptyQuery(t *testing.T) {
	users := noopUserRepo()
	users.searchFn = func(context.Context, string, int, int) ([]models.User, error) {
		t.Fatal("empty query must not hit the repository")
		return nil, nil
	}

	svc := NewUserService(users, noopPostRepo(), noopObjectStore())
	results, err := svc.SearchUsers(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %v", results)
	}
}

func TestUserServiceGetUserByUsernameMissing(t *testing.T) {
	users := noopUserRepo()
	users.getByUsernameFn = func(context.Context, string) (*models.User, error) { return nil, nil }

	svc := NewUserService(users, noopPostRepo(), noopObjectStore())
	_, err := svc.GetUserByUsername(context.Background(), "ghost")
	assertAppError(t, err, models.CodeNotFound)
}
