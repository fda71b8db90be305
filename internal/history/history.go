/*
Package history remembers which disclosures a digest has already reported today, so repeated
runs only report new matches.
*/
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shanehull/tdnetviewer/internal/types"
)

const (
	historyFileName = "tdnet_digest_history.json"
	historyDirName  = "tdnetviewer"
)

type History struct {
	ReportDate      string
	ReportedMatches map[string]map[string]bool
}

type Manager struct {
	history         History
	mutex           sync.Mutex
	historyFilePath string
	reportLocation  *time.Location
	now             func() time.Time
	logger          *slog.Logger
}

// NewManager loads the history stored under dir, or under the system temp directory when
// dir is empty. History from an earlier report day is discarded.
func NewManager(dir string, loc *time.Location, logger *slog.Logger) (*Manager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), historyDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}

	m := &Manager{
		historyFilePath: filepath.Join(dir, historyFileName),
		reportLocation:  loc,
		now:             time.Now,
		logger:          logger,
	}

	m.loadHistory()
	return m, nil
}

func (m *Manager) loadHistory() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	today := m.getCurrentReportDate()
	m.history = History{
		ReportDate:      today,
		ReportedMatches: make(map[string]map[string]bool),
	}

	data, err := os.ReadFile(m.historyFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Info("history file not found, starting fresh report", "path", m.historyFilePath)
			return
		}
		m.logger.Warn("error reading history file, starting fresh report", "path", m.historyFilePath, "error", err)
		return
	}

	var loadedHistory History
	if err := json.Unmarshal(data, &loadedHistory); err != nil {
		m.logger.Warn("error unmarshalling history JSON, starting fresh report", "error", err)
		return
	}

	if loadedHistory.ReportDate == today && loadedHistory.ReportedMatches != nil {
		m.history = loadedHistory
		m.logger.Info("loaded reported matches", "count", len(m.history.ReportedMatches), "date", today)
	} else {
		m.logger.Info("history is stale, starting new report", "history_date", loadedHistory.ReportDate, "date", today)
	}
}

func (m *Manager) saveHistory() error {
	m.history.ReportDate = m.getCurrentReportDate()

	data, err := json.MarshalIndent(m.history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(m.historyFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", m.historyFilePath, err)
	}
	m.logger.Info("saved report history", "path", m.historyFilePath)
	return nil
}

// FilterNewMatches returns the keywords of foundKeywords not yet reported for rec today.
func (m *Manager) FilterNewMatches(rec types.DisclosureRecord, foundKeywords []string) []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(foundKeywords) == 0 {
		return nil
	}

	reportedKws, exists := m.history.ReportedMatches[key(rec)]
	if !exists {
		return foundKeywords
	}

	var newKeywords []string
	for _, kw := range foundKeywords {
		if !reportedKws[kw] {
			newKeywords = append(newKeywords, kw)
		}
	}
	return newKeywords
}

// RecordMatches marks matches as reported and persists the history.
func (m *Manager) RecordMatches(matches []types.Match) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, match := range matches {
		k := key(match.DisclosureRecord)
		if m.history.ReportedMatches[k] == nil {
			m.history.ReportedMatches[k] = make(map[string]bool)
		}
		for _, kw := range match.KeywordsFound {
			m.history.ReportedMatches[k][kw] = true
		}
	}
	return m.saveHistory()
}

func (m *Manager) HistoryFilePath() string {
	return m.historyFilePath
}

func (m *Manager) getCurrentReportDate() string {
	return m.now().In(m.reportLocation).Format("2006-01-02")
}

func key(rec types.DisclosureRecord) string {
	return rec.Code + "|" + rec.Title
}
