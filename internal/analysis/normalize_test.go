package analysis

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseReturnsValidJSONUnmodified(t *testing.T) {
	raw := `{"risks":[{"risk":"Auto renewal","explanation":"Renews unless cancelled: 90 days, in writing"}],` +
		`"opportunities":[],"summary":"Term: one year, fees: fixed","overallScore":"72","nested":{"a":[1,true,null]}}`

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var want map[string]any
	if err := json.Unmarshal([]byte(raw), &want); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parsed structure changed:\n got %#v\nwant %#v", got, want)
	}
}

func TestParseRepairsBareKeysAndTrailingCommas(t *testing.T) {
	raw := "{risks: [{risk: \"Penalty\", explanation: \"Late fee\"},], opportunities: [], summary: \"ok\",}"

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]any{
		"risks":         []any{map[string]any{"risk": "Penalty", "explanation": "Late fee"}},
		"opportunities": []any{},
		"summary":       "ok",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected repair result %#v", got)
	}
}

func TestParseStripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"summary\": \"fenced\", \"risks\": [], \"opportunities\": []}\n```"
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["summary"] != "fenced" {
		t.Fatalf("unexpected summary %v", got["summary"])
	}
}

func TestParseFoldsFragmentAfterStringValue(t *testing.T) {
	raw := `{"summary": "Balanced agreement" overall, "risks": [], "opportunities": []}`
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["summary"] != "Balanced agreement overall" {
		t.Fatalf("unexpected summary %q", got["summary"])
	}
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"", "null", "[1,2]", "The contract looks fine."} {
		if _, err := Parse(raw); !errors.Is(err, ErrUnparseable) {
			t.Fatalf("%q: expected ErrUnparseable, got %v", raw, err)
		}
	}
}

func TestFallbackRecoversRecognizableFields(t *testing.T) {
	raw := `Sure! Here it is "risks": [{"risk": "Unlimited liability", "explanation": "No cap"}, {"risk": "Vague scope"}], ` +
		`"opportunities": [{"opportunity": "Volume discount", "explanation": "Tiered pricing"}], "summary": "Mostly \"fair\" terms" <<truncated`

	if _, err := Parse(raw); err == nil {
		t.Fatal("expected strict parse to fail")
	}
	got := Fallback(raw)

	if len(got.Risks) != 2 {
		t.Fatalf("expected 2 risks, got %#v", got.Risks)
	}
	if got.Risks[0].Risk != "Unlimited liability" || got.Risks[0].Explanation != "No cap" {
		t.Fatalf("unexpected first risk %#v", got.Risks[0])
	}
	if got.Risks[1].Risk != "Vague scope" || got.Risks[1].Explanation != unknownField {
		t.Fatalf("unexpected second risk %#v", got.Risks[1])
	}
	if len(got.Opportunities) != 1 || got.Opportunities[0].Opportunity != "Volume discount" {
		t.Fatalf("unexpected opportunities %#v", got.Opportunities)
	}
	if got.Summary != `Mostly "fair" terms` {
		t.Fatalf("unexpected summary %q", got.Summary)
	}
}

func TestFallbackWithNothingRecognizable(t *testing.T) {
	got := Fallback("I'm sorry, I cannot help with that.")
	if got.Risks == nil || len(got.Risks) != 0 {
		t.Fatalf("expected empty risks, got %#v", got.Risks)
	}
	if got.Opportunities == nil || len(got.Opportunities) != 0 {
		t.Fatalf("expected empty opportunities, got %#v", got.Opportunities)
	}
	if got.Summary != DefaultSummary {
		t.Fatalf("unexpected summary %q", got.Summary)
	}

	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"risks":[],"opportunities":[],"summary":"Error analyzing contract"}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}

func TestFallbackSkipsEmptyArrays(t *testing.T) {
	got := Fallback(`"risks": [], "opportunities": [ ]`)
	if len(got.Risks) != 0 || len(got.Opportunities) != 0 {
		t.Fatalf("expected no items, got %#v", got)
	}
}
