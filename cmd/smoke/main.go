// Command smoke exercises a running server end to end: upload, wait for
// indexing, then ask one answerable and one unanswerable question.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
)

const sampleContract = `MASTER SERVICES AGREEMENT

Clause 9. Termination. Either party may terminate this agreement with thirty (30) days written notice to the other party.

Clause 10. Notices. All notices must be delivered in writing to the addresses listed in Schedule A.`

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) do(req *http.Request) (*http.Response, []byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp, body, err
}

func (c *client) postJSON(path string, body interface{}) (*http.Response, []byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) get(path string) (*http.Response, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	return c.do(req)
}

func (c *client) upload(filename, content string) (*http.Response, []byte, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, nil, err
	}
	if _, err := io.WriteString(part, content); err != nil {
		return nil, nil, err
	}
	if err := w.Close(); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/upload", buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func fail(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}

func mintToken(secret, tenant string) (string, error) {
	if secret == "" {
		// the server reads claims without verification when it has no secret
		secret = "unverified"
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": tenant,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "server base URL")
	tenant := flag.String("tenant", "smoke-tenant", "tenant id placed in the sub claim")
	wait := flag.Duration("wait", 60*time.Second, "how long to wait for indexing")
	flag.Parse()

	token, err := mintToken(os.Getenv("JWT_SECRET"), *tenant)
	if err != nil {
		fail("Failed to mint token: %v", err)
	}
	c := &client{baseURL: *baseURL, token: token, http: &http.Client{Timeout: 3 * time.Minute}}

	color.Cyan("Axiom smoke test against %s (tenant %s)\n", *baseURL, *tenant)

	color.Yellow("\n1. Health")
	resp, body, err := c.get("/health")
	if err != nil {
		fail("Failed: %v", err)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	color.Yellow("\n2. Upload sample contract")
	resp, body, err = c.upload("msa.txt", sampleContract)
	if err != nil || resp.StatusCode != http.StatusOK {
		fail("Upload failed: %v %s", err, string(body))
	}
	var uploaded struct {
		Id string `json:"id"`
	}
	_ = json.Unmarshal(body, &uploaded)
	color.Green("Queued document %s", uploaded.Id)

	color.Yellow("\n3. Waiting for indexing")
	deadline := time.Now().Add(*wait)
	for {
		_, body, err = c.get("/api/v1/documents")
		if err != nil {
			fail("Failed: %v", err)
		}
		var list struct {
			Data []struct {
				Id     string `json:"id"`
				Status string `json:"status"`
			} `json:"data"`
		}
		_ = json.Unmarshal(body, &list)

		status := ""
		for _, d := range list.Data {
			if d.Id == uploaded.Id {
				status = d.Status
			}
		}
		if status == "indexed" {
			color.Green("Indexed")
			break
		}
		if status == "error" {
			fail("Indexing failed")
		}
		if time.Now().After(deadline) {
			fail("Timed out waiting for indexing (last status %q)", status)
		}
		time.Sleep(time.Second)
	}

	questions := []struct {
		question   string
		wantStatus string
	}{
		{"What is the termination clause?", "verified"},
		{"What is the CEO's salary?", "insufficient_evidence"},
	}
	for i, q := range questions {
		color.Yellow("\n%d. Verify: %s", i+4, q.question)
		resp, body, err = c.postJSON("/api/v1/verify", map[string]string{"question": q.question})
		if err != nil {
			fail("Failed: %v", err)
		}
		prettyPrint(body)

		var out struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &out)
		if resp.StatusCode == http.StatusOK && out.Status == q.wantStatus {
			color.Green("OK: %s", out.Status)
		} else {
			color.Red("Unexpected: HTTP %d status %q, want %q", resp.StatusCode, out.Status, q.wantStatus)
		}
	}
}
