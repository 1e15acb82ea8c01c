package snapshot

import (
	"reflect"
	"strings"
	"testing"

	"hotelcore/pkg/domain"
	"hotelcore/testutil/fixture"
)

func TestSplitJoinRoundTrip(t *testing.T) {
	want := fixture.Document()
	buckets, err := Split(want)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for _, name := range Names {
		if len(buckets[name]) == 0 {
			t.Fatalf("bucket %s empty", name)
		}
	}
	if !strings.Contains(string(buckets[BucketHistory]), `"total registrations":"2"`) {
		t.Fatalf("history bucket must keep the wire counter format: %s", buckets[BucketHistory])
	}
	got, err := buckets.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDocumentEdgeCases(t *testing.T) {
	doc, err := Buckets{}.Document()
	if err != nil || !reflect.DeepEqual(doc, domain.NewDocument()) {
		t.Fatalf("empty buckets should give an empty document: %+v %v", doc, err)
	}
	doc, err = Buckets{BucketUsers: []byte(`{"199001011234":{"name":"A","age":"3"}}`), "legacy": []byte(`[]`)}.Document()
	if err != nil {
		t.Fatalf("partial buckets: %v", err)
	}
	if len(doc.Users) != 1 || doc.Rooms == nil {
		t.Fatalf("expected users and normalized rooms, got %+v", doc)
	}
	if _, err := (Buckets{BucketRooms: []byte(`[{`)}).Document(); err == nil {
		t.Fatalf("expected invalid json error")
	}
	if _, err := (Buckets{BucketActive: []byte(`{"199001011234":{"room":"x"}}`)}).Document(); err == nil {
		t.Fatalf("expected schema error")
	}
}
