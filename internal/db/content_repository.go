package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"theorie-backend-go/internal/models"
)

const (
	examsCollection   = "exams"
	lessonsCollection = "lessons"
	signsCollection   = "trafficSigns"
)

// firestoreExamRepository implements the ExamRepository interface using Firestore.
type firestoreExamRepository struct {
	client *firestore.Client
}

// NewFirestoreExamRepository creates a new instance of firestoreExamRepository.
func NewFirestoreExamRepository(client *firestore.Client) ExamRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ExamRepository.")
	}
	return &firestoreExamRepository{client: client}
}

// List returns all fixed exams. The document ID is the exam slug.
func (r *firestoreExamRepository) List(ctx context.Context) ([]*models.Exam, error) {
	iter := r.client.Collection(examsCollection).Documents(ctx)
	defer iter.Stop()

	var exams []*models.Exam
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate exams: %w", err)
		}

		var exam models.Exam
		if err := doc.DataTo(&exam); err != nil {
			log.Printf("Error decoding exam data (slug: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		exam.Slug = doc.Ref.ID
		exams = append(exams, &exam)
	}
	return exams, nil
}

// GetBySlug retrieves a fixed exam by its slug.
func (r *firestoreExamRepository) GetBySlug(ctx context.Context, slug string) (*models.Exam, error) {
	if slug == "" {
		return nil, errors.New("slug cannot be empty for GetBySlug operation")
	}
	docSnap, err := r.client.Collection(examsCollection).Doc(slug).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("exam with slug '%s' not found: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get exam with slug '%s': %w", slug, err)
	}

	var exam models.Exam
	if err := docSnap.DataTo(&exam); err != nil {
		return nil, fmt.Errorf("failed to decode exam data for slug '%s': %w", slug, err)
	}
	exam.Slug = docSnap.Ref.ID
	return &exam, nil
}

// firestoreLessonRepository implements the LessonRepository interface using Firestore.
type firestoreLessonRepository struct {
	client *firestore.Client
}

// NewFirestoreLessonRepository creates a new instance of firestoreLessonRepository.
func NewFirestoreLessonRepository(client *firestore.Client) LessonRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for LessonRepository.")
	}
	return &firestoreLessonRepository{client: client}
}

// List returns all lessons ordered by chapter position.
func (r *firestoreLessonRepository) List(ctx context.Context) ([]*models.Lesson, error) {
	iter := r.client.Collection(lessonsCollection).OrderBy("order", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var lessons []*models.Lesson
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate lessons: %w", err)
		}

		var lesson models.Lesson
		if err := doc.DataTo(&lesson); err != nil {
			log.Printf("Error decoding lesson data (slug: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		lesson.Slug = doc.Ref.ID
		lessons = append(lessons, &lesson)
	}
	return lessons, nil
}

// GetBySlug retrieves a lesson by its slug.
func (r *firestoreLessonRepository) GetBySlug(ctx context.Context, slug string) (*models.Lesson, error) {
	if slug == "" {
		return nil, errors.New("slug cannot be empty for GetBySlug operation")
	}
	docSnap, err := r.client.Collection(lessonsCollection).Doc(slug).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("lesson with slug '%s' not found: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson with slug '%s': %w", slug, err)
	}

	var lesson models.Lesson
	if err := docSnap.DataTo(&lesson); err != nil {
		return nil, fmt.Errorf("failed to decode lesson data for slug '%s': %w", slug, err)
	}
	lesson.Slug = docSnap.Ref.ID
	return &lesson, nil
}

// firestoreSignRepository implements the SignRepository interface using Firestore.
type firestoreSignRepository struct {
	client *firestore.Client
}

// NewFirestoreSignRepository creates a new instance of firestoreSignRepository.
func NewFirestoreSignRepository(client *firestore.Client) SignRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SignRepository.")
	}
	return &firestoreSignRepository{client: client}
}

// List returns all traffic signs. The document ID is the RVV sign code.
func (r *firestoreSignRepository) List(ctx context.Context) ([]*models.TrafficSign, error) {
	iter := r.client.Collection(signsCollection).Documents(ctx)
	defer iter.Stop()

	var signs []*models.TrafficSign
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate traffic signs: %w", err)
		}

		var sign models.TrafficSign
		if err := doc.DataTo(&sign); err != nil {
			log.Printf("Error decoding traffic sign data (code: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		sign.Code = doc.Ref.ID
		signs = append(signs, &sign)
	}
	return signs, nil
}
