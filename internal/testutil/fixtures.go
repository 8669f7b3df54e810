package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Diseases and TalkAbout are the category values used by annotation fixtures.
var (
	Diseases  = []string{"HIV", "Fibromyalgia", "Asthma"}
	TalkAbout = []string{"celeb", "himself", "none"}
)

// AnnotationCSV renders n annotation records with columns
// tweet_id, user_id, disease, talk_about, text.
//
// Record i gets disease Diseases[i%3] and talk_about TalkAbout[(i/3)%3],
// so the nine combinations repeat every nine records. tweet_id values
// start at offset+1 and are unique across fixtures with disjoint offsets.
func AnnotationCSV(n, offset int) string {
	var b strings.Builder
	b.WriteString("tweet_id,user_id,disease,talk_about,text\n")
	for i := 0; i < n; i++ {
		id := offset + i + 1
		fmt.Fprintf(&b, "%d,u%d,%s,%s,tweet number %d\n",
			id, id%7, Diseases[i%3], TalkAbout[(i/3)%3], id)
	}
	return b.String()
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// AnnotationDir creates dir/"Annotations Data" holding files annotator
// exports of perFile records each, and returns the directory.
func AnnotationDir(t *testing.T, root string, files, perFile int) string {
	t.Helper()
	dir := filepath.Join(root, "Annotations Data")
	for f := 0; f < files; f++ {
		WriteFile(t, dir, fmt.Sprintf("annotator_%d.csv", f+1), AnnotationCSV(perFile, f*perFile))
	}
	return dir
}
