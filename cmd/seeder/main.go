package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

// seedCases are sample test-case documents used to exercise ingestion and
// hybrid search locally, including a few near-duplicate titles for the
// deduplicator.
var seedCases = []struct {
	title    string
	contents string
	suite    string
}{
	{"Login with valid credentials", "Open the login form, enter a registered username and password, submit, and verify the dashboard loads.", "auth"},
	{"Login with valid credential", "Open the login form, enter a registered username and password, submit, and verify the dashboard loads without errors.", "auth"},
	{"Login with invalid password", "Enter a registered username with a wrong password and verify the form shows an authentication error.", "auth"},
	{"Login with locked account", "Attempt to log in with an account locked after repeated failures and verify the lockout message.", "auth"},
	{"Logout clears the session", "Log in, press logout, navigate back, and verify the session is gone and the login form is shown.", "auth"},
	{"Reset password via email link", "Request a password reset, open the emailed link, set a new password, and verify login works with it.", "auth"},
	{"Password reset link expires", "Request a password reset, wait past the expiry window, and verify the link is rejected.", "auth"},
	{"Export report as PDF", "Open a populated report, choose PDF export, and verify the downloaded file renders every section.", "reports"},
	{"Export report as CSV", "Open a populated report, choose CSV export, and verify the file contains one row per record.", "reports"},
	{"Filter report by date range", "Apply a one-week date range filter and verify only records inside the range are listed.", "reports"},
	{"Create a new project", "Fill in the project creation form with a unique name and verify the project appears in the list.", "projects"},
	{"Rename an existing project", "Open project settings, change the name, save, and verify the list shows the new name.", "projects"},
	{"Delete an empty project", "Delete a project without documents and verify it disappears from the list and search.", "projects"},
	{"Archive a completed project", "Archive a project and verify it is hidden from the active list but reachable via filters.", "projects"},
	{"Upload a document attachment", "Attach a file to a record, save, reload, and verify the attachment downloads intact.", "documents"},
	{"Upload rejects oversized files", "Attach a file above the size limit and verify the upload is rejected with a clear message.", "documents"},
	{"Search finds exact title match", "Search for a record's full title and verify it is the first result.", "search"},
	{"Search tolerates typos", "Search with a single-character typo and verify the intended record still ranks near the top.", "search"},
	{"Search respects project scope", "Search inside one project and verify no records from other projects appear.", "search"},
	{"Pagination keeps sort order", "Sort records by title, page forward and back, and verify ordering stays consistent.", "search"},
}

var (
	outFileName = flag.String("out", "corpus.jsonl", "output corpus file")
	repeat      = flag.Int("repeat", 1, "number of copies of the seed set to emit")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

type corpusRecord struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Contents string            `json:"contents"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func main() {
	f, err := os.Create(*outFileName)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	encoder := json.NewEncoder(w)
	n := 0
	for copyIdx := 0; copyIdx < *repeat; copyIdx++ {
		for _, seed := range seedCases {
			n++
			record := corpusRecord{
				ID:       fmt.Sprintf("TC-%04d", n),
				Title:    seed.title,
				Contents: seed.contents,
				Fields:   map[string]string{"suite": seed.suite},
			}
			if err := encoder.Encode(record); err != nil {
				panic(err)
			}
		}
	}

	slog.Info("corpus written", "file", *outFileName, "records", n)
}
