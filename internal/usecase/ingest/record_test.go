package ingest

import (
	"slices"
	"testing"
)

func TestDecode_FacilitiesShapes(t *testing.T) {
	records, err := Decode([]byte(`[
		{"hotel_id": 1, "name": "北京饭店", "facilities": "免费WiFi；停车场"},
		{"hotel_id": 2, "name": "如家", "facilities": ["健身房", "洗衣服务"]},
		{"hotel_id": 3, "name": "汉庭", "facilities": null},
		{"name": "无编号"}
	]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records", len(records))
	}
	if !slices.Equal(records[0].Facilities, Facilities{"免费WiFi；停车场"}) {
		t.Errorf("string facilities = %v", records[0].Facilities)
	}
	if got := records[1].Facilities.Text("，"); got != "健身房，洗衣服务" {
		t.Errorf("list facilities text = %q", got)
	}
	if records[2].Facilities != nil {
		t.Errorf("null facilities = %v", records[2].Facilities)
	}
	if records[3].HotelID != nil {
		t.Error("missing hotel_id should decode as nil")
	}
}

func TestDecode_InvalidFacilities(t *testing.T) {
	if _, err := Decode([]byte(`[{"hotel_id": 1, "facilities": [1, 2]}]`)); err == nil {
		t.Fatal("expected error for numeric facility items")
	}
	if _, err := Decode([]byte(`{"hotel_id": 1}`)); err == nil {
		t.Fatal("expected error for non-array document")
	}
}

func TestRecord_Tokens(t *testing.T) {
	derived := Record{Name: "北京 王府井(大)饭店", Address: "东城区-王府井大街8号"}
	name, addr := derived.Tokens()
	if name != "北京 王府井 大 饭店" {
		t.Errorf("derived name tokens = %q", name)
	}
	if addr != "东城区-王府井大街8号" {
		t.Errorf("derived address tokens = %q", addr)
	}

	given := Record{Name: "北京饭店", NameTokens: str("北京 饭店"), AddressTokens: str("")}
	name, addr = given.Tokens()
	if name != "北京 饭店" || addr != "" {
		t.Errorf("source tokens should be kept, got %q %q", name, addr)
	}
}

func TestRecord_Hotel(t *testing.T) {
	r := Record{HotelID: id(5), Name: "亚朵", Price: 420, Rating: 4.7, Facilities: Facilities{"a", "b"}}
	h := r.Hotel("、")
	if got, _ := h.ID(); got != 5 {
		t.Errorf("ID = %d", got)
	}
	if h.Facilities != "a、b" || h.Price != 420 || h.Rating != 4.7 {
		t.Errorf("unexpected hotel: %+v", h)
	}
}
