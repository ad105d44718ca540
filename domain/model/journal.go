package model

// JournalDatabase is the storage structure of the session journal
type JournalDatabase struct {
	Reports []*SessionReport `json:"reports"` // Completed sessions, oldest first
}

// Trim drops the oldest reports so that at most max remain (max <= 0 keeps all)
func (db *JournalDatabase) Trim(max int) {
	if max <= 0 || len(db.Reports) <= max {
		return
	}
	db.Reports = append([]*SessionReport(nil), db.Reports[len(db.Reports)-max:]...)
}
