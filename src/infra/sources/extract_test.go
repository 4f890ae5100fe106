package sources

import "testing"

func TestPickupNestedPath(t *testing.T) {
	doc, ok := decodeJSON([]byte(`{"a":{"b":{"c":[{"id":1},{"id":2}]}}}`))
	if !ok {
		t.Fatal("decode failed")
	}

	recs := AsRecordList(Pickup(doc, "a.b.c"))
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if str(recs[0]["id"]) != "1" {
		t.Errorf("expected first id 1, got %q", str(recs[0]["id"]))
	}
}

func TestPickupMissingSegment(t *testing.T) {
	doc, _ := decodeJSON([]byte(`{"a":{"b":{}}}`))

	if v := Pickup(doc, "a.b.c"); v != nil {
		t.Errorf("expected nil for missing segment, got %v", v)
	}
	if recs := AsRecordList(Pickup(doc, "a.x.c")); len(recs) != 0 {
		t.Errorf("expected empty list, got %d records", len(recs))
	}
}

func TestPickupThroughNonObject(t *testing.T) {
	doc, _ := decodeJSON([]byte(`{"a":"scalar"}`))

	if v := Pickup(doc, "a.b"); v != nil {
		t.Errorf("expected nil when traversing a scalar, got %v", v)
	}
}

func TestAsRecordListWrapsSingleObject(t *testing.T) {
	doc, _ := decodeJSON([]byte(`{"song":{"id":"x"}}`))

	recs := AsRecordList(Pickup(doc, "song"))
	if len(recs) != 1 {
		t.Fatalf("expected single object wrapped into one record, got %d", len(recs))
	}
	if str(recs[0]["id"]) != "x" {
		t.Errorf("unexpected record content: %v", recs[0])
	}
}

func TestAsRecordListSkipsNonObjectElements(t *testing.T) {
	doc, _ := decodeJSON([]byte(`[{"id":"a"},"junk",3,{"id":"b"}]`))

	recs := AsRecordList(doc)
	if len(recs) != 2 {
		t.Fatalf("expected 2 object records, got %d", len(recs))
	}
}

func TestExtractRecordsMalformedBody(t *testing.T) {
	if recs := extractRecords([]byte("<html>error</html>"), "a.b", ExtractPath); len(recs) != 0 {
		t.Errorf("expected no records from malformed body, got %d", len(recs))
	}
}

func TestExtractRecordsRootList(t *testing.T) {
	recs := extractRecords([]byte(`[{"id":"1"}]`), "", ExtractRootList)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
}

func TestValuesPreserveLargeIDs(t *testing.T) {
	doc, _ := decodeJSON([]byte(`{"id":1999999999999999999}`))

	if got := str(obj(doc)["id"]); got != "1999999999999999999" {
		t.Errorf("large id lost precision: %q", got)
	}
}
