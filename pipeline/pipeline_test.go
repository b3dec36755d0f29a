package pipeline

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semexhibit/extract"
	"github.com/c360studio/semexhibit/fetch"
	"github.com/c360studio/semexhibit/graph"
	"github.com/c360studio/semexhibit/omeka"
	"github.com/c360studio/semexhibit/vocabulary"
)

// ntIRI and ntLit build N-Triples object terms.
func ntIRI(s string) string { return "<" + s + ">" }

func ntLit(v, lang string) string {
	if lang != "" {
		return fmt.Sprintf("%q@%s", v, lang)
	}
	return fmt.Sprintf("%q", v)
}

// rdfHost serves one N-Triples document per path.
func rdfHost(t *testing.T) (*httptest.Server, map[string][]string) {
	t.Helper()
	docs := make(map[string][]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lines, ok := docs[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/n-triples")
		_, _ = w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	}))
	t.Cleanup(srv.Close)
	return srv, docs
}

// fakeCMS records exhibit and item submissions.
type fakeCMS struct {
	exhibits   []url.Values
	items      []*multipart.Form
	rejectItem string // reject items whose title matches
}

func (f *fakeCMS) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/users/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
	})
	mux.HandleFunc("/admin/exhibits/add", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.exhibits = append(f.exhibits, r.PostForm)
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/admin/items/add", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		title := ""
		if v := r.MultipartForm.Value[extract.FieldTitle]; len(v) > 0 {
			title = v[0]
		}
		if f.rejectItem != "" && title == f.rejectItem {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.items = append(f.items, r.MultipartForm)
		w.WriteHeader(http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newPipeline wires a pipeline against the test RDF host, CMS, and an
// optional blurb service.
func newPipeline(t *testing.T, rdfURL, cmsURL, blurbURL string) *Pipeline {
	t.Helper()

	fetcher := fetch.NewFetcher(fetch.Options{}, nil)
	nav := graph.NewNavigator(graph.NewStore(), fetcher, nil)

	var blurb *fetch.BlurbClient
	if blurbURL != "" {
		blurb = fetch.NewBlurbClient(blurbURL, 6400, 0, nil)
	}
	media := fetch.NewMediaClient(rdfURL+"/raw", 0, nil)
	extractor := extract.NewExtractor(nav, blurb, media, "en", nil)

	cms, err := omeka.NewClient(cmsURL, 0, nil)
	require.NoError(t, err)
	require.NoError(t, cms.Login(context.Background(), "admin", "secret"))

	listing := []graph.Identifier{vocabulary.ListedSites}
	return New(nav, extractor, cms, listing, nil, nil)
}

func TestRunGoldenGatePark(t *testing.T) {
	rdf, docs := rdfHost(t)
	root := rdf.URL + "/root"
	child := rdf.URL + "/child"
	geo := rdf.URL + "/geo"

	docs["/root"] = []string{
		fmt.Sprintf("%s %s %s .", ntIRI(root), ntIRI(vocabulary.Name), ntLit("Golden Gate Park", "en")),
		fmt.Sprintf("%s %s %s .", ntIRI(root), ntIRI(vocabulary.AttributionName), ntLit("Freebase contributors", "")),
		fmt.Sprintf("%s %s %s .", ntIRI(root), ntIRI(vocabulary.ListedSites), ntIRI(child)),
	}
	docs["/child"] = []string{
		fmt.Sprintf("%s %s %s .", ntIRI(child), ntIRI(vocabulary.RDFType), ntIRI(vocabulary.ProtectedSite)),
		fmt.Sprintf("%s %s %s .", ntIRI(child), ntIRI(vocabulary.Name), ntLit("Bridge Overlook", "en")),
		fmt.Sprintf("%s %s %s .", ntIRI(child), ntIRI(vocabulary.Geolocation), ntIRI(geo)),
	}
	docs["/geo"] = []string{
		fmt.Sprintf("%s %s %s .", ntIRI(geo), ntIRI(vocabulary.Longitude), ntLit("-122.42", "")),
		fmt.Sprintf("%s %s %s .", ntIRI(geo), ntIRI(vocabulary.Latitude), ntLit("37.77", "")),
	}

	cms := &fakeCMS{}
	p := newPipeline(t, rdf.URL, cms.server(t).URL, "")

	require.NoError(t, p.Run(context.Background(), graph.Identifier(root)))

	// Exactly one exhibit submission.
	require.Len(t, cms.exhibits, 1)
	assert.Equal(t, "Golden Gate Park", cms.exhibits[0].Get("title"))
	assert.Equal(t, "Golden-Gate-Park", cms.exhibits[0].Get("slug"))
	assert.Equal(t, "Freebase contributors", cms.exhibits[0].Get("credits"))
	assert.Empty(t, cms.exhibits[0].Get("description"))

	// Exactly one item submission with coverage and no attachments.
	require.Len(t, cms.items, 1)
	item := cms.items[0]
	assert.Equal(t, []string{"Bridge Overlook"}, item.Value[extract.FieldTitle])
	assert.Equal(t, []string{"1"}, item.Value[extract.FieldPublic])

	cover := item.Value[extract.FieldGeoCoverage]
	require.Len(t, cover, 1)
	assert.True(t, strings.HasPrefix(cover[0], "POINT("), "coverage WKT, got %q", cover[0])
	assert.Equal(t, []string{"1"}, item.Value[extract.FieldGeoShowMap])
	assert.Equal(t, []string{child}, item.Value[extract.FieldIdentifier])
	assert.Len(t, item.File, 0, "no image predicates means no attachments")

	subject := item.Value[extract.FieldSubject]
	require.Len(t, subject, 1)
	assert.Contains(t, subject[0], "protected_sites.protected_site")
}

func TestRunDescriptionServiceFailure(t *testing.T) {
	rdf, docs := rdfHost(t)
	root := rdf.URL + "/root"
	article := rdf.URL + "/article"

	docs["/root"] = []string{
		fmt.Sprintf("%s %s %s .", ntIRI(root), ntIRI(vocabulary.Name), ntLit("Golden Gate Park", "en")),
		fmt.Sprintf("%s %s %s .", ntIRI(root), ntIRI(vocabulary.TopicArticle), ntIRI(article)),
	}
	docs["/article"] = []string{
		fmt.Sprintf("%s %s %s .", ntIRI(article), ntIRI(vocabulary.RDFType), ntIRI(vocabulary.DocumentType)),
	}

	blurb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(blurb.Close)

	cms := &fakeCMS{}
	p := newPipeline(t, rdf.URL, cms.server(t).URL, blurb.URL)

	require.NoError(t, p.Run(context.Background(), graph.Identifier(root)),
		"a failing description service must not fail the run")
	require.Len(t, cms.exhibits, 1)
	_, has := cms.exhibits[0]["description"]
	assert.False(t, has, "description field must be absent")
}

func TestRunItemFailureIsolated(t *testing.T) {
	rdf, docs := rdfHost(t)
	root := rdf.URL + "/root"
	bad := rdf.URL + "/bad"
	good := rdf.URL + "/good"

	docs["/root"] = []string{
		fmt.Sprintf("%s %s %s .", ntIRI(root), ntIRI(vocabulary.Name), ntLit("Golden Gate Park", "en")),
		fmt.Sprintf("%s %s %s .", ntIRI(root), ntIRI(vocabulary.ListedSites), ntIRI(bad)),
		fmt.Sprintf("%s %s %s .", ntIRI(root), ntIRI(vocabulary.ListedSites), ntIRI(good)),
	}
	docs["/bad"] = []string{
		fmt.Sprintf("%s %s %s .", ntIRI(bad), ntIRI(vocabulary.Name), ntLit("Doomed", "en")),
	}
	docs["/good"] = []string{
		fmt.Sprintf("%s %s %s .", ntIRI(good), ntIRI(vocabulary.Name), ntLit("Survivor", "en")),
	}

	cms := &fakeCMS{rejectItem: "Doomed"}
	p := newPipeline(t, rdf.URL, cms.server(t).URL, "")

	require.NoError(t, p.Run(context.Background(), graph.Identifier(root)),
		"one item's failure must not abort the batch")
	require.Len(t, cms.items, 1)
	assert.Equal(t, []string{"Survivor"}, cms.items[0].Value[extract.FieldTitle])
}

func TestRunRootFetchFailureIsFatal(t *testing.T) {
	rdf, _ := rdfHost(t) // no documents: everything 404s

	cms := &fakeCMS{}
	p := newPipeline(t, rdf.URL, cms.server(t).URL, "")

	err := p.Run(context.Background(), graph.Identifier(rdf.URL+"/root"))
	require.Error(t, err)
	assert.Empty(t, cms.exhibits, "nothing may be submitted when the root cannot be fetched")
}
