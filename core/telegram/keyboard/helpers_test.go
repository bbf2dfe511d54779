package keyboard

import "testing"

func TestChunk(t *testing.T) {
	rows := Chunk([]int{1, 2, 3, 4, 5, 6, 7}, 3)
	if len(rows) != 3 || len(rows[2]) != 1 || rows[1][0] != 4 {
		t.Fatalf("Chunk = %v", rows)
	}
	if single := Chunk([]string{"a", "b"}, 0); len(single) != 2 {
		t.Fatalf("Chunk n=0 = %v", single)
	}
	if empty := Chunk[int](nil, 4); len(empty) != 0 {
		t.Fatalf("Chunk nil = %v", empty)
	}
}

func TestInlineRows(t *testing.T) {
	if InlineRows(nil, []InlineBtn{}) != nil {
		t.Fatal("empty keyboard must be nil")
	}
	m := InlineRows([]InlineBtn{{Text: "⬅️", Data: "actor:0"}, {Text: "➡️", Data: "actor:2"}}, nil, []InlineBtn{{Text: "Меню", Data: "return_to_main_menu"}})
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d", len(m.InlineKeyboard))
	}
	if got := m.InlineKeyboard[0][1].Data; got != "actor:2" {
		t.Fatalf("data = %q", got)
	}
}
