package common

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateTransactionNo(t *testing.T) {
	pattern := regexp.MustCompile(`^DON-\d+-[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		trx := GenerateTransactionNo()
		if !pattern.MatchString(trx) {
			t.Fatalf("unexpected transaction number format: %s", trx)
		}
		if seen[trx] {
			t.Fatalf("duplicate transaction number generated: %s", trx)
		}
		seen[trx] = true
	}
}

func TestGenerateReceiptNo(t *testing.T) {
	rcp := GenerateReceiptNo()
	if !strings.HasPrefix(rcp, "RCP-") {
		t.Errorf("expected RCP- prefix, got %s", rcp)
	}
	if !regexp.MustCompile(`^RCP-\d+-[0-9A-F]{8}$`).MatchString(rcp) {
		t.Errorf("unexpected receipt number format: %s", rcp)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+255769080629":  "769080629",
		"255769080629":   "769080629",
		"769080629":      "769080629",
		"0769080629":     "769080629",
		" +255 769 080 629 ": "769080629",
	}
	for input, want := range cases {
		if got := NormalizePhone(input); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestInternationalPhone(t *testing.T) {
	if got := InternationalPhone("+255769080629"); got != "255769080629" {
		t.Errorf("InternationalPhone = %q, want 255769080629", got)
	}
	if got := InternationalPhone("0769080629"); got != "255769080629" {
		t.Errorf("InternationalPhone = %q, want 255769080629", got)
	}
}

func TestPaginate(t *testing.T) {
	data := []string{"a", "b"}

	res := Paginate(data, 100, 1, 10, "")
	if res.Message != "success" {
		t.Errorf("expected default message, got %s", res.Message)
	}
	if res.LastPage != 10 {
		t.Errorf("expected LastPage 10, got %d", res.LastPage)
	}
	if res.NextPage != 2 || res.PrevPage != 0 {
		t.Errorf("unexpected neighbours: next=%d prev=%d", res.NextPage, res.PrevPage)
	}

	res = Paginate(data, 100, 10, 10, "")
	if res.NextPage != 0 {
		t.Errorf("expected NextPage 0 on last page, got %d", res.NextPage)
	}
	if res.PrevPage != 9 {
		t.Errorf("expected PrevPage 9, got %d", res.PrevPage)
	}

	res = Paginate(nil, 0, 1, 10, "empty")
	if res.LastPage != 0 || res.NextPage != 0 {
		t.Errorf("unexpected paging for empty set: %+v", res)
	}
}
