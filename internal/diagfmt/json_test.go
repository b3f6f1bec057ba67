package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONKeyedByPath(t *testing.T) {
	reports, fset := sampleReports(t)

	var buf bytes.Buffer
	if err := JSON(&buf, reports, fset, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}

	var out ReportsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}

	ok := out["examples/ok.iris"]
	if !ok.OK || len(ok.Diagnostics) != 0 || ok.Opens != 2 || ok.Closes != 2 {
		t.Errorf("unexpected ok entry: %+v", ok)
	}

	bad := out["examples/bad.iris"]
	if bad.OK || len(bad.Diagnostics) != 2 {
		t.Fatalf("unexpected bad entry: %+v", bad)
	}
	first := bad.Diagnostics[0]
	if first.Code != "BAL1001" || first.Location.StartLine != 4 || first.Location.StartCol != 1 {
		t.Errorf("unexpected first diagnostic: %+v", first)
	}
	if len(bad.Diagnostics[1].Notes) != 1 {
		t.Errorf("expected note on unclosed diagnostic")
	}

	none := out["examples/none.iris"]
	if none.OK || len(none.Diagnostics) != 1 || none.Diagnostics[0].Code != "IO4002" {
		t.Errorf("unexpected missing entry: %+v", none)
	}
}

func TestJSONMax(t *testing.T) {
	reports, fset := sampleReports(t)
	out := BuildReportsOutput(reports, fset, JSONOpts{Max: 1})
	bad := out["examples/bad.iris"]
	if len(bad.Diagnostics) != 1 || bad.Dropped != 1 {
		t.Fatalf("expected truncation to 1 with 1 dropped, got %+v", bad)
	}
}
