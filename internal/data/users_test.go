package data

import (
	"context"
	"errors"
	"testing"
)

func TestUsersCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	c := testDB(t)

	_ = c.UsersCollection().Drop(ctx)
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	users := NewUsersStore(c.UsersCollection())

	created, err := users.CreateUser(ctx, "ALICE@Example.COM", "hashed-pw", "Alice")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}
	if created.UID() == "" {
		t.Fatal("expected generated user id")
	}

	// duplicate email, any casing, hits the unique index
	if _, err := users.CreateUser(ctx, "alice@example.com", "other", "Imposter"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	// lookup normalizes too
	found, err := users.GetUserByEmail(ctx, "Alice@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if found.UID() != created.UID() {
		t.Fatalf("lookup returned wrong user: %s vs %s", found.UID(), created.UID())
	}

	byID, err := users.GetUserByID(ctx, created.UID())
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Fatalf("wrong user by id: %q", byID.Email)
	}

	if _, err := users.GetUserByID(ctx, "not-a-hex-id"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for malformed id, got %v", err)
	}

	exists, err := users.UserExists(ctx, created.UID())
	if err != nil {
		t.Fatalf("UserExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected user to exist")
	}
}

func TestUsersListContacts(t *testing.T) {
	ctx := context.Background()
	c := testDB(t)

	_ = c.UsersCollection().Drop(ctx)

	users := NewUsersStore(c.UsersCollection())

	alice, err := users.CreateUser(ctx, "alice@example.com", "pw", "Alice")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := users.CreateUser(ctx, "bob@example.com", "pw", "Bob Marley"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := users.CreateUser(ctx, "cara@example.com", "pw", "Cara"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// the requester is excluded
	all, err := users.ListContacts(ctx, alice.UID(), "")
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(all))
	}

	// case-insensitive substring over display name and email
	matched, err := users.ListContacts(ctx, alice.UID(), "marley")
	if err != nil {
		t.Fatalf("ListContacts with search failed: %v", err)
	}
	if len(matched) != 1 || matched[0].DisplayName != "Bob Marley" {
		t.Fatalf("expected only Bob Marley, got %+v", matched)
	}

	byEmail, err := users.ListContacts(ctx, alice.UID(), "CARA@")
	if err != nil {
		t.Fatalf("ListContacts by email failed: %v", err)
	}
	if len(byEmail) != 1 || byEmail[0].Email != "cara@example.com" {
		t.Fatalf("expected only Cara, got %+v", byEmail)
	}
}

func TestUsersProfileUpdates(t *testing.T) {
	ctx := context.Background()
	c := testDB(t)

	_ = c.UsersCollection().Drop(ctx)

	users := NewUsersStore(c.UsersCollection())

	u, err := users.CreateUser(ctx, "alice@example.com", "pw", "Alice")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := users.UpdateDisplayName(ctx, u.UID(), "Alice Cooper"); err != nil {
		t.Fatalf("UpdateDisplayName failed: %v", err)
	}
	if err := users.UpdateStatus(ctx, u.UID(), "on tour"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if err := users.UpdatePhotoURL(ctx, u.UID(), "http://example.com/a.jpg"); err != nil {
		t.Fatalf("UpdatePhotoURL failed: %v", err)
	}
	if err := users.SetPresence(ctx, u.UID(), true); err != nil {
		t.Fatalf("SetPresence failed: %v", err)
	}

	got, err := users.GetUserByID(ctx, u.UID())
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.DisplayName != "Alice Cooper" || got.Status != "on tour" || got.PhotoURL == "" || !got.Online {
		t.Fatalf("profile updates not applied: %+v", got)
	}
	if got.LastSeen.IsZero() {
		t.Fatal("expected last-seen stamped by SetPresence")
	}

	// updating a user that does not exist reports not-found
	if err := users.UpdateStatus(ctx, "ffffffffffffffffffffffff", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
