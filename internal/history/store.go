package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"csacademy/interview/internal/models"
)

// ErrIncompleteSession is returned when asked to record a session that has
// not finished.
var ErrIncompleteSession = errors.New("history: session is not finished")

// Store keeps finished interviews and their transcripts.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// Migrate creates or updates the history tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.InterviewRecord{}, &models.TranscriptMessage{})
}

// Record stores a finished session. Recording the same session twice
// replaces the earlier copy.
func (s *Store) Record(ctx context.Context, session *models.InterviewSession, transcript []models.InterviewMessage) error {
	if session == nil || !session.Status.IsTerminal() {
		return ErrIncompleteSession
	}

	completedAt := s.now()
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}

	record := models.InterviewRecord{
		SessionID:       session.ID,
		UserID:          session.UserID,
		InterviewType:   session.InterviewType,
		Difficulty:      string(session.Difficulty),
		Status:          string(session.Status),
		Score:           session.Score,
		DurationMinutes: session.DurationMinutes,
		ProblemTitle:    session.ProblemTitle,
		Feedback:        session.Feedback,
		StartedAt:       session.StartedAt,
		CompletedAt:     completedAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.InterviewRecord
		found := tx.Where("session_id = ?", session.ID).Limit(1).Find(&existing)
		if found.Error != nil {
			return found.Error
		}
		if found.RowsAffected > 0 {
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			if err := tx.Unscoped().Where("record_id = ?", existing.ID).Delete(&models.TranscriptMessage{}).Error; err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).Save(&record).Error; err != nil {
				return err
			}
		} else if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			return err
		}

		if len(transcript) == 0 {
			return nil
		}
		lines := make([]models.TranscriptMessage, len(transcript))
		for i, m := range transcript {
			lines[i] = models.TranscriptMessage{
				RecordID:       record.ID,
				Position:       i,
				MessageID:      m.ID,
				Type:           string(m.Type),
				Sender:         string(m.Sender),
				Content:        m.Content,
				QuestionNumber: m.QuestionNumber,
				SentAt:         m.Timestamp,
			}
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record interview %s: %w", session.ID, err)
	}

	s.logger.Info("Recorded interview history",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.Int("messages", len(transcript)))
	return nil
}

// ListByUser returns the user's interviews, newest first, without
// transcripts.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error) {
	var records []models.InterviewRecord

	query := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("completed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list interviews for %s: %w", userID, err)
	}
	return records, nil
}

// Transcript returns one recorded interview with its messages in order.
func (s *Store) Transcript(ctx context.Context, userID, sessionID string) (*models.InterviewRecord, error) {
	var record models.InterviewRecord
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Stats summarises the user's recorded interviews.
func (s *Store) Stats(ctx context.Context, userID string) (*models.HistoryStats, error) {
	db := s.db.WithContext(ctx)
	stats := &models.HistoryStats{ByDifficulty: make(map[string]int64)}

	if err := db.Model(&models.InterviewRecord{}).Where("user_id = ?", userID).Count(&stats.TotalInterviews).Error; err != nil {
		return nil, err
	}

	var avg struct{ Avg *float64 }
	if err := db.Model(&models.InterviewRecord{}).
		Select("AVG(score) AS avg").
		Where("user_id = ? AND score IS NOT NULL", userID).
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	stats.AverageScore = avg.Avg

	var rows []struct {
		Difficulty string
		Count      int64
	}
	if err := db.Model(&models.InterviewRecord{}).
		Select("difficulty, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("difficulty").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByDifficulty[r.Difficulty] = r.Count
	}

	return stats, nil
}

// PruneBefore permanently removes interviews completed before cutoff and
// reports how many were removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old := tx.Unscoped().Model(&models.InterviewRecord{}).Select("id").Where("completed_at < ?", cutoff)
		if err := tx.Unscoped().Where("record_id IN (?)", old).Delete(&models.TranscriptMessage{}).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Where("completed_at < ?", cutoff).Delete(&models.InterviewRecord{})
		removed = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune interviews before %v: %w", cutoff, err)
	}

	if removed > 0 {
		s.logger.Info("Pruned interview history", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	}
	return removed, nil
}
