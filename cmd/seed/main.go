// Command seed fills a running FlashDeck instance with generated cards.
// It logs in with the admin password, creates a few categories, then
// posts cards through the same form endpoint the browser uses and clicks
// around to give the counters non-zero values.
//
// Usage:
//
//	go run ./cmd/seed -addr http://localhost:8080 -password secret -cards 30
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var languages = []string{"python", "go", "javascript", "rust", "sql"}

var tagPool = []string{
	"basics", "internals", "concurrency", "testing", "performance",
	"syntax", "stdlib", "patterns", "debugging", "tooling",
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the running server")
	password := flag.String("password", "", "admin password for /login")
	cards := flag.Int("cards", 30, "number of cards to create")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	gofakeit.Seed(time.Now().UnixNano())

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		// Form posts answer with a redirect to the new card; the
		// Location header is how we learn its ID.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	login(client, *addr, *password)

	categoryIDs := make([]string, 0, 4)
	for _, name := range []string{"Python", "Go", "Databases", "Algorithms"} {
		if id := createCategory(client, *addr, name); id != "" {
			categoryIDs = append(categoryIDs, id)
		}
	}

	created := 0
	for i := 0; i < *cards; i++ {
		categoryID := ""
		if len(categoryIDs) > 0 && gofakeit.Bool() {
			categoryID = categoryIDs[gofakeit.Number(0, len(categoryIDs)-1)]
		}

		cardID := createCard(client, *addr, categoryID)
		if cardID == "" {
			continue
		}
		created++

		// Random view and add counts so the catalog sorts mean something.
		for v := gofakeit.Number(0, 8); v > 0; v-- {
			get(client, *addr+"/cards/"+cardID)
		}
		for a := gofakeit.Number(0, 4); a > 0; a-- {
			if resp := post(client, *addr+"/api/cards/"+cardID+"/add", "", nil); resp != nil {
				resp.Body.Close()
			}
		}
	}

	log.Printf("seeded %d cards across %d categories", created, len(categoryIDs))
}

func login(client *http.Client, addr, password string) {
	form := url.Values{"password": {password}}
	resp, err := client.PostForm(addr+"/login", form)
	if err != nil {
		log.Fatal("login:", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		log.Fatalf("login failed with status %s", resp.Status)
	}
}

func createCategory(client *http.Client, addr, name string) string {
	body, _ := json.Marshal(map[string]string{"name": name})
	resp := post(client, addr+"/api/categories", "application/json", body)
	if resp == nil {
		return ""
	}
	defer resp.Body.Close()

	// Conflict means a previous run already created it; reuse is fine
	// but we have no lookup endpoint, so just skip the category.
	if resp.StatusCode != http.StatusCreated {
		log.Printf("createCategory %s: %s", name, resp.Status)
		return ""
	}

	var category struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&category); err != nil {
		log.Println("createCategory: decoding response:", err)
		return ""
	}
	return category.ID
}

func createCard(client *http.Client, addr, categoryID string) string {
	form := url.Values{
		"question": {gofakeit.Question()},
		"answer":   {fakeAnswer()},
		"category": {categoryID},
		"tags":     {fakeTags()},
	}

	resp, err := client.PostForm(addr+"/cards/add", form)
	if err != nil {
		log.Println("createCard:", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		log.Printf("createCard: %s", resp.Status)
		return ""
	}

	location := resp.Header.Get("Location")
	return strings.TrimPrefix(location, "/cards/")
}

// fakeAnswer builds a markdown answer, half the time with a fenced code
// block in the shape the validator accepts.
func fakeAnswer() string {
	answer := gofakeit.Paragraph(2, 3, 10, " ")
	if gofakeit.Bool() {
		lang := languages[gofakeit.Number(0, len(languages)-1)]
		answer += fmt.Sprintf("\n```%s\n\n%s\n```", lang, "value = "+gofakeit.Word())
	}
	return answer
}

func fakeTags() string {
	count := gofakeit.Number(1, 3)
	tags := make([]string, 0, count)
	for i := 0; i < count; i++ {
		tags = append(tags, tagPool[gofakeit.Number(0, len(tagPool)-1)])
	}
	return strings.Join(tags, ",")
}

func get(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		log.Println("GET", url, ":", err)
		return
	}
	resp.Body.Close()
}

func post(client *http.Client, url, contentType string, body []byte) *http.Response {
	resp, err := client.Post(url, contentType, bytes.NewReader(body))
	if err != nil {
		log.Println("POST", url, ":", err)
		return nil
	}
	return resp
}
