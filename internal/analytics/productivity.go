package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Ownership summarizes who owns a file. The primary owner holds the
// plurality of commits; secondaries hold at least a quarter of the
// primary's count.
type Ownership struct {
	FilePath     string   `json:"file_path"`
	PrimaryOwner string   `json:"primary_owner"`
	Secondary    []string `json:"secondary_owners"`
	AuthorCount  int      `json:"author_count"`
	TotalCommits int      `json:"total_commits"`
}

// Collaboration is a file several people actively edit. High author
// counts on complex files correlate with conflicting changes.
type Collaboration struct {
	FilePath    string   `json:"file_path"`
	Authors     []string `json:"authors"`
	AuthorCount int      `json:"author_count"`
}

// OnboardingEntry tracks one developer's footprint over time.
type OnboardingEntry struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	FirstCommit  time.Time `json:"first_commit"`
	LastCommit   time.Time `json:"last_commit"`
	ActiveDays   int       `json:"active_days"`
	FilesTouched int       `json:"files_touched"`
	TotalCommits int       `json:"total_commits"`
}

// ProductivityReport is the team-level view of the history facts.
type ProductivityReport struct {
	Ownership     []Ownership       `json:"ownership"`
	Collaboration []Collaboration   `json:"collaboration"`
	Onboarding    []OnboardingEntry `json:"onboarding"`
}

// Productivity builds ownership, collaboration, and onboarding views.
// minAuthors gates the collaboration list; 0 defaults to 3.
func (a *Analyzer) Productivity(ctx context.Context, minAuthors int) (*ProductivityReport, error) {
	if minAuthors <= 0 {
		minAuthors = 3
	}
	rows, err := a.store.AuthorOwnership(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load ownership: %w", err)
	}

	type fileAcc struct {
		authors []string
		commits []int
		total   int
	}
	byFile := map[string]*fileAcc{}
	for _, r := range rows {
		acc := byFile[r.FilePath]
		if acc == nil {
			acc = &fileAcc{}
			byFile[r.FilePath] = acc
		}
		acc.authors = append(acc.authors, r.AuthorName)
		acc.commits = append(acc.commits, r.CommitCount)
		acc.total += r.CommitCount
	}

	report := &ProductivityReport{
		Ownership:     []Ownership{},
		Collaboration: []Collaboration{},
	}
	for path, acc := range byFile {
		// rows arrive sorted by commit count per file from the store;
		// re-sort locally so the contract does not leak in here.
		idx := make([]int, len(acc.authors))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(i, j int) bool {
			if acc.commits[idx[i]] != acc.commits[idx[j]] {
				return acc.commits[idx[i]] > acc.commits[idx[j]]
			}
			return acc.authors[idx[i]] < acc.authors[idx[j]]
		})

		own := Ownership{
			FilePath:     path,
			PrimaryOwner: acc.authors[idx[0]],
			Secondary:    []string{},
			AuthorCount:  len(acc.authors),
			TotalCommits: acc.total,
		}
		primaryCommits := acc.commits[idx[0]]
		for _, i := range idx[1:] {
			if acc.commits[i]*4 >= primaryCommits {
				own.Secondary = append(own.Secondary, acc.authors[i])
			}
		}
		report.Ownership = append(report.Ownership, own)

		if len(acc.authors) >= minAuthors {
			names := make([]string, len(idx))
			for i, j := range idx {
				names[i] = acc.authors[j]
			}
			report.Collaboration = append(report.Collaboration, Collaboration{
				FilePath:    path,
				Authors:     names,
				AuthorCount: len(names),
			})
		}
	}
	sort.Slice(report.Ownership, func(i, j int) bool {
		return report.Ownership[i].FilePath < report.Ownership[j].FilePath
	})
	sort.Slice(report.Collaboration, func(i, j int) bool {
		if report.Collaboration[i].AuthorCount != report.Collaboration[j].AuthorCount {
			return report.Collaboration[i].AuthorCount > report.Collaboration[j].AuthorCount
		}
		return report.Collaboration[i].FilePath < report.Collaboration[j].FilePath
	})

	activities, err := a.store.AuthorActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load author activity: %w", err)
	}
	for _, act := range activities {
		report.Onboarding = append(report.Onboarding, OnboardingEntry{
			Name:         act.Name,
			Email:        act.Email,
			FirstCommit:  act.FirstCommit,
			LastCommit:   act.LastCommit,
			ActiveDays:   int(act.LastCommit.Sub(act.FirstCommit).Hours()/24) + 1,
			FilesTouched: act.FilesTouched,
			TotalCommits: act.TotalCommits,
		})
	}
	return report, nil
}
