package repository

import (
	"context"
	"database/sql"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

type JotFormRepository struct {
	db *database.DB
}

func NewJotFormRepository(db *database.DB) *JotFormRepository {
	return &JotFormRepository{db: db}
}

func (r *JotFormRepository) Create(ctx context.Context, s *models.JotFormSubmission) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO jotform_submissions (submission_id, form_id, session_id, reservation_id, answers)
		VALUES (?, ?, ?, ?, ?)`,
		s.SubmissionID, s.FormID, s.SessionID, s.ReservationID, []byte(s.Answers))
	if err != nil {
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r *JotFormRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*models.JotFormSubmission, error) {
	s := &models.JotFormSubmission{}
	var answers []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, submission_id, form_id, session_id, reservation_id, answers, created_at
		FROM jotform_submissions
		WHERE submission_id = ?`, submissionID).Scan(
		&s.ID,
		&s.SubmissionID,
		&s.FormID,
		&s.SessionID,
		&s.ReservationID,
		&answers,
		&s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Answers = answers
	return s, nil
}

func (r *JotFormRepository) LinkReservation(ctx context.Context, submissionID string, reservationID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jotform_submissions SET reservation_id = ? WHERE submission_id = ?`, reservationID, submissionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// LinkSession attaches unlinked submissions of sessionID to the reservation.
func (r *JotFormRepository) LinkSession(ctx context.Context, q Querier, sessionID string, reservationID int64) (int64, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE jotform_submissions SET reservation_id = ? WHERE session_id = ? AND reservation_id IS NULL`,
		reservationID, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
