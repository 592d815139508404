package db

import (
	"errors"
	"testing"

	"github.com/deemkeen/huddle/domain"
)

func TestCreateCommentAndReadOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestAccount(t, db, "alice")
	bob := createTestAccount(t, db, "bob")
	post := createTestPost(t, db, alice, "start Puka or Nabers?", domain.VisibilityPublic)

	first, err := db.CreateComment(post, bob, "Puka, easy")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	second, err := db.CreateComment(post, alice, "bold")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	comments, err := db.ReadComments(post)
	if err != nil {
		t.Fatalf("ReadComments failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(comments))
	}
	if comments[0].Id != first || comments[1].Id != second {
		t.Errorf("Expected oldest first [%d %d], got [%d %d]", first, second, comments[0].Id, comments[1].Id)
	}
	if comments[0].ExternalUsername != "bob" || comments[0].DisplayName != "bob" {
		t.Errorf("Expected author bob, got %+v", comments[0])
	}
	if comments[0].Content != "Puka, easy" {
		t.Errorf("Unexpected content '%s'", comments[0].Content)
	}
}

func TestCreateCommentOnPrivatePostOfStranger(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestAccount(t, db, "alice")
	stranger := createTestAccount(t, db, "stranger")
	post := createTestPost(t, db, alice, "circle only", domain.VisibilityPrivate)

	// commenting is not gated by feed visibility
	if _, err := db.CreateComment(post, stranger, "hi"); err != nil {
		t.Errorf("Expected comment to be accepted, got %v", err)
	}
}

func TestCreateCommentValidation(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestAccount(t, db, "alice")
	post := createTestPost(t, db, alice, "post", domain.VisibilityPublic)

	if _, err := db.CreateComment(post, alice, " "); !errors.Is(err, domain.ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, got %v", err)
	}
	if _, err := db.CreateComment(9999, alice, "orphan"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing post, got %v", err)
	}
}

func TestReadCommentsEmpty(t *testing.T) {
	db := setupTestDB(t)

	comments, err := db.ReadComments(1)
	if err != nil {
		t.Fatalf("ReadComments failed: %v", err)
	}
	if comments == nil || len(comments) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", comments)
	}
}
