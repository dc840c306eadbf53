package standings

import (
	"errors"
	"reflect"
	"testing"
)

// sheetCSV mirrors the published sheet: two structural columns, then the table.
const sheetCSV = `

,,Team,Wins,Losses,Ties,Games Played,Goals Scored,Points
,1,Bruins,3,3,2,8,19,8
,2,Red Wings,5,2,1,8,25,11
,3,Canadiens,x,5,1,8,,5

,4,,9,9,9,9,9,99
,5,Sabres,1,1,1,3,4,3
`

// legacyCSV is the older single-leading-column revision of the sheet.
const legacyCSV = "Team,Wins,Losses,Ties,Games Played,Goals Scored,Points\n" +
	",Bruins,3,3,2,8,19,8\r\n" +
	",Red Wings,5,2,1,8,25,11\r\n"

func TestParseDefaultLayout(t *testing.T) {
	records, err := Parse(sheetCSV, DefaultLayout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d: %+v", len(records), records)
	}

	want := TeamRecord{Team: "Red Wings", Wins: 5, Losses: 2, Ties: 1, GamesPlayed: 8, GoalsScored: 25, Points: 11}
	if records[1] != want {
		t.Errorf("Red Wings: want %+v, got %+v", want, records[1])
	}

	// unparseable and missing numbers fall back to zero
	c := records[2]
	if c.Team != "Canadiens" || c.Wins != 0 || c.GoalsScored != 0 || c.Points != 5 {
		t.Errorf("Canadiens: got %+v", c)
	}
}

func TestParseLegacyLayout(t *testing.T) {
	records, err := Parse(legacyCSV, LegacyLayout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0].Team != "Bruins" || records[1].Points != 11 {
		t.Errorf("got %+v", records)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("only one line", DefaultLayout); !errors.Is(err, ErrTooFewLines) {
		t.Errorf("want ErrTooFewLines, got %v", err)
	}
	if _, err := Parse("\n  \n\n", DefaultLayout); !errors.Is(err, ErrNoHeader) {
		t.Errorf("want ErrNoHeader, got %v", err)
	}
}

func TestRankTieBreaks(t *testing.T) {
	records := []TeamRecord{
		{Team: "A", Points: 10, Wins: 5, GoalsScored: 20},
		{Team: "B", Points: 10, Wins: 6, GoalsScored: 18},
		{Team: "C", Points: 8},
		{Team: "D", Points: 10, Wins: 5, GoalsScored: 22},
	}

	got := names(Rank(records))
	want := []string{"B", "D", "A", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}

	// input must not be reordered
	if records[0].Team != "A" {
		t.Error("Rank mutated its input")
	}
}

func TestRankStable(t *testing.T) {
	records := []TeamRecord{{Team: "X", Points: 4}, {Team: "Y", Points: 4}, {Team: "Z", Points: 4}}
	if got := names(Rank(records)); !reflect.DeepEqual(got, []string{"X", "Y", "Z"}) {
		t.Errorf("equal records should keep input order, got %v", got)
	}
}

func TestMergeAgainstRoster(t *testing.T) {
	parsed := []TeamRecord{
		{Team: "A", Points: 4},
		{Team: "B", Points: 2},
		{Team: "Z", Points: 99},
	}
	merged := Merge(parsed, []string{"A", "B", "C"})

	if got := names(merged); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("want roster order, got %v", got)
	}
	if merged[2] != (TeamRecord{Team: "C"}) {
		t.Errorf("C should be a zero record, got %+v", merged[2])
	}
}

func TestMergeIsExactMatch(t *testing.T) {
	merged := Merge([]TeamRecord{{Team: "red wings", Points: 11}}, []string{"Red Wings"})
	if merged[0].Points != 0 {
		t.Errorf("case-mismatched names must not merge, got %+v", merged[0])
	}
}

func TestBuild(t *testing.T) {
	ranked, err := Build(sheetCSV, []string{"Bruins", "Canadiens", "Lightning", "Red Wings"}, DefaultLayout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Red Wings", "Bruins", "Canadiens", "Lightning"}
	if got := names(ranked); !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}

	if _, err := Build("x", nil, DefaultLayout); !errors.Is(err, ErrTooFewLines) {
		t.Errorf("want ErrTooFewLines, got %v", err)
	}
}

func TestEncodeCSVRoundTrip(t *testing.T) {
	records := []TeamRecord{
		{Team: "Red Wings", Wins: 5, Losses: 2, Ties: 1, GamesPlayed: 8, GoalsScored: 25, Points: 11},
		{Team: "Leafs, Maple", Wins: 4, Losses: 3, Ties: 1, GamesPlayed: 8, GoalsScored: 22, Points: 9},
		{Team: "Lightning"},
	}

	for _, layout := range []Layout{DefaultLayout, LegacyLayout} {
		parsed, err := Parse(EncodeCSV(records, layout), layout)
		if err != nil {
			t.Fatalf("offset %d: unexpected error: %v", layout.Offset, err)
		}
		if !reflect.DeepEqual(parsed, records) {
			t.Errorf("offset %d: round trip mismatch\nwant %+v\ngot  %+v", layout.Offset, records, parsed)
		}
	}
}

func TestFallbackIsRanked(t *testing.T) {
	fb := Fallback()
	if len(fb) != 5 || fb[0].Team != "Red Wings" || fb[4].Team != "Lightning" {
		t.Errorf("unexpected fallback table: %v", names(fb))
	}
}

func names(records []TeamRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Team
	}
	return out
}
