package journal

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "notion-import-journal-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM runs`).Scan(&count); err != nil {
		t.Fatalf("runs table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`).Scan(&count); err != nil {
		t.Fatalf("pages table missing: %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	db := testDB(t)
	id, err := db.StartRun("/export", "parent-1")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if id == "" {
		t.Fatal("empty run id")
	}

	_ = db.RecordPage(PageRecord{RunID: id, Kind: KindNotebook, Title: "My Notebook", PageID: "p1", Status: StatusOK})
	_ = db.RecordPage(PageRecord{RunID: id, Kind: KindNote, Title: "a", SourcePath: "My Notebook/S/a.md", Blocks: 3, Images: 1, PageID: "p2", Status: StatusOK})
	_ = db.RecordPage(PageRecord{RunID: id, Kind: KindNote, Title: "b", Status: StatusFailed, Error: "boom"})

	if err := db.FinishRun(id, StatusCompleted, ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := db.Runs(10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.Status != StatusCompleted || r.FinishedAt == nil {
		t.Errorf("run = %+v", r)
	}
	if r.PagesOK != 2 || r.PagesFailed != 1 {
		t.Errorf("counts ok=%d failed=%d", r.PagesOK, r.PagesFailed)
	}

	pages, err := db.Pages(id)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 3 || pages[1].Blocks != 3 || pages[1].Images != 1 || pages[2].Error != "boom" {
		t.Errorf("pages = %+v", pages)
	}
}

func TestRuns_NewestFirst(t *testing.T) {
	db := testDB(t)
	first, _ := db.StartRun("/a", "p")
	time.Sleep(5 * time.Millisecond)
	second, _ := db.StartRun("/b", "p")

	runs, err := db.Runs(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != second || runs[1].ID != first {
		t.Errorf("runs order = %+v", runs)
	}
	if runs[0].FinishedAt != nil {
		t.Error("unfinished run should have nil FinishedAt")
	}
}

func TestFinishRun_Unknown(t *testing.T) {
	db := testDB(t)
	if err := db.FinishRun("nope", StatusAborted, "x"); err == nil {
		t.Error("expected error for unknown run")
	}
}
