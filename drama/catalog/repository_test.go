package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/nezabudrama/core/database/dbtest"
)

func sampleEntry(title, actor string, year int) Entry {
	return Entry{
		TitlePrimary:   title,
		TitleSecondary: title + " (en)",
		Country:        "Южная Корея",
		Year:           year,
		Director:       "Ли Ын Бок",
		LeadActress:    "Ким Го Ын",
		LeadActor:      actor,
		Plot:           "plot",
		Comment:        "comment",
		Rating:         9,
	}
}

func seed(t *testing.T, repo *Repository, entries ...Entry) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		id, err := repo.Insert(context.Background(), e)
		if err != nil {
			t.Fatalf("insert %q: %v", e.TitlePrimary, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestInsertGetRoundTrip(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	e := sampleEntry("Гоблин #1 *звёзды*", "Гон Ю", 2016)
	e.PosterURL = "https://downloader.disk.yandex.ru/poster.jpg"
	ids := seed(t, repo, e)

	got, err := repo.Get(ctx, ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TitlePrimary != e.TitlePrimary || got.LeadActor != e.LeadActor || got.Year != 2016 || got.Rating != 9 || got.PosterURL != e.PosterURL {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if _, err := repo.Get(ctx, ids[0]+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing get err = %v", err)
	}
}

func TestInsertRejectsInvalid(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	e := sampleEntry("x", "y", 1899)
	if _, err := repo.Insert(context.Background(), e); err == nil {
		t.Fatal("year 1899 must be rejected")
	}
	e = sampleEntry("x", "y", 2000)
	e.Country = "Франция"
	if _, err := repo.Insert(context.Background(), e); err == nil {
		t.Fatal("unknown country must be rejected")
	}
	e = sampleEntry("x", "y", 2000)
	e.Plot = "  "
	if _, err := repo.Insert(context.Background(), e); err == nil {
		t.Fatal("blank plot must be rejected")
	}
	if n, _ := repo.Count(context.Background(), All()); n != 0 {
		t.Fatalf("count = %d after rejected inserts", n)
	}
}

func TestContainsIsCaseAndUnicodeInsensitive(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	seed(t, repo,
		sampleEntry("Москва Story", "Гон Ю", 2016),
		sampleEntry("Другая", "Пак Бо Гом", 2017),
	)
	n, err := repo.Count(ctx, Contains(FieldTitle, "МОСКВА   story"))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	// secondary title is matched too
	if n, _ := repo.Count(ctx, Contains(FieldTitle, "(EN)")); n != 2 {
		t.Fatalf("secondary match = %d, want 2", n)
	}
	// LIKE wildcards in the needle are literal
	if n, _ := repo.Count(ctx, Contains(FieldTitle, "%")); n != 0 {
		t.Fatalf("wildcard match = %d, want 0", n)
	}
}

func TestFindPagesAndOrders(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	seed(t, repo,
		sampleEntry("В", "a", 2001),
		sampleEntry("А", "a", 2002),
		sampleEntry("Б", "a", 2003),
	)
	page, err := repo.Find(ctx, All(), OrderTitlePrimary, 2, 0)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(page) != 2 || page[0].TitlePrimary != "А" || page[1].TitlePrimary != "Б" {
		t.Fatalf("page 0 = %+v", page)
	}
	page, _ = repo.Find(ctx, All(), OrderTitlePrimary, 2, 2)
	if len(page) != 1 || page[0].TitlePrimary != "В" {
		t.Fatalf("page 1 = %+v", page)
	}
	page, _ = repo.Find(ctx, Equals(FieldYear, 2002), OrderTitlePrimary, 10, 0)
	if len(page) != 1 || page[0].Year != 2002 {
		t.Fatalf("year filter = %+v", page)
	}
}

func TestLetterColumnsSkipArticles(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	e := sampleEntry("Король", "a", 2020)
	e.TitleSecondary = "The King: Eternal Monarch"
	seed(t, repo, e)

	if n, _ := repo.Count(ctx, HasPrefix(FieldLetterSecondary, "K")); n != 1 {
		t.Fatalf("letter K = %d, want 1", n)
	}
	if n, _ := repo.Count(ctx, HasPrefix(FieldLetterSecondary, "T")); n != 0 {
		t.Fatalf("letter T = %d, want 0", n)
	}
	letters, err := repo.DistinctValues(ctx, FieldLetterPrimary, All())
	if err != nil || len(letters) != 1 || letters[0] != "К" {
		t.Fatalf("letters = %v, %v", letters, err)
	}
	if _, err := repo.Count(ctx, HasPrefix(FieldTitle, "K")); err == nil {
		t.Fatal("HasPrefix on a non-letter field must fail")
	}
}

func TestDeleteByID(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	ids := seed(t, repo, sampleEntry("x", "y", 2000))

	ok, err := repo.DeleteByID(ctx, ids[0]+1)
	if err != nil || ok {
		t.Fatalf("missing delete = %v, %v", ok, err)
	}
	ok, err = repo.DeleteByID(ctx, ids[0])
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	if n, _ := repo.Count(ctx, All()); n != 0 {
		t.Fatalf("count after delete = %d", n)
	}
}

func TestDistinctPeopleKeepsCountries(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	cn := sampleEntry("Китайская", "Ли Мин", 2019)
	cn.Country = "Китай"
	seed(t, repo,
		sampleEntry("Первая", "Ли Мин", 2018),
		sampleEntry("Вторая", "Ли Мин", 2019),
		cn,
		sampleEntry("Третья", "Ли Мин Хо", 2020),
		sampleEntry("Четвёртая", "Гон Ю", 2020),
	)
	p := Contains(FieldLeadActor, "ли мин")
	n, err := repo.CountPeople(ctx, FieldLeadActor, p)
	if err != nil {
		t.Fatalf("count people: %v", err)
	}
	if n != 3 {
		t.Fatalf("people = %d, want 3", n)
	}
	people, err := repo.DistinctPeople(ctx, FieldLeadActor, p, 10, 0)
	if err != nil {
		t.Fatalf("people: %v", err)
	}
	want := []Person{{"Ли Мин", "Китай"}, {"Ли Мин", "Южная Корея"}, {"Ли Мин Хо", "Южная Корея"}}
	if len(people) != len(want) {
		t.Fatalf("people = %+v", people)
	}
	for i := range want {
		if people[i] != want[i] {
			t.Fatalf("people[%d] = %+v, want %+v", i, people[i], want[i])
		}
	}
	if _, err := repo.CountPeople(ctx, FieldCountry, All()); err == nil {
		t.Fatal("country is not a people field")
	}
}

func TestYearsAndRatings(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	a := sampleEntry("a", "x", 2016)
	b := sampleEntry("b", "x", 2016)
	b.Rating = 7
	c := sampleEntry("c", "x", 2020)
	seed(t, repo, a, b, c)

	if n, _ := repo.CountYears(ctx); n != 2 {
		t.Fatalf("years = %d", n)
	}
	years, err := repo.Years(ctx, 1, 1)
	if err != nil || len(years) != 1 || years[0] != 2016 {
		t.Fatalf("years page = %v, %v", years, err)
	}
	ratings, err := repo.Ratings(ctx)
	if err != nil || len(ratings) != 2 || ratings[0] != 9 || ratings[1] != 7 {
		t.Fatalf("ratings = %v, %v", ratings, err)
	}
}
