package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	vm "github.com/wian47/portfolio/internal/adapter/driving/web/viewmodel"
)

// Home renders the single portfolio page.
func Home(page vm.PageViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		hw.raw(`<header class="site-header"><nav><a class="brand" href="/">`)
		hw.text(page.Account)
		hw.raw(`</a><ul><li><a href="#about">About</a></li><li><a href="#projects">Projects</a></li>`)
		if page.ContactEnabled {
			hw.raw(`<li><a href="#contact">Contact</a></li>`)
		}
		hw.raw(`</ul></nav></header><main>`)

		hw.render(ctx, Stats(page.Stats))

		if page.ReadmeHTML != "" {
			hw.raw(`<section id="about" class="about"><h2>About</h2><div class="markdown">`)
			hw.render(ctx, templ.Raw(page.ReadmeHTML))
			hw.raw(`</div></section>`)
		}

		hw.render(ctx, Projects(page))

		if len(page.Languages) > 0 {
			hw.render(ctx, Languages(page.Languages))
		}

		if page.ContactEnabled {
			hw.render(ctx, ContactForm(page.CSRFToken))
		}

		hw.raw(`</main>`)

		if page.AssistantEnabled {
			hw.render(ctx, ChatWidget())
		}

		hw.raw(`<footer class="site-footer"><a`)
		hw.url("href", "https://github.com/"+url.PathEscape(page.Account))
		hw.raw(` rel="noopener">GitHub</a></footer>`)
		return hw.err
	})
}

// Stats renders the three counters.
func Stats(s vm.StatsViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="stats">`)
		stat(hw, "repos-count", s.Repos, "Repositories", "")
		stat(hw, "stars-count", s.Stars, "Stars", "")
		stat(hw, "commits-count", s.Commits, "Commits", s.CommitsTitle)
		hw.raw(`</section>`)
		return hw.err
	})
}

func stat(hw *htmlWriter, id, value, label, title string) {
	hw.raw(`<div class="stat"><span class="stat-value"`)
	hw.attr("id", id)
	if title != "" {
		hw.attr("title", title)
	}
	hw.raw(`>`)
	hw.text(value)
	hw.raw(`</span><span class="stat-label">`)
	hw.text(label)
	hw.raw(`</span></div>`)
}

// Projects renders the filter bar and either the project grid or the
// unavailable notice.
func Projects(page vm.PageViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section id="projects" class="projects"><h2>Projects</h2>`)

		hw.raw(`<form class="project-filters" method="get" action="/#projects">`)
		hw.raw(`<input type="search" name="q" placeholder="Search projects"`)
		hw.attr("value", page.Query)
		hw.raw(`>`)
		for _, f := range page.Categories {
			hw.raw(`<button type="submit" name="category"`)
			hw.attr("value", f.Value)
			if f.Active {
				hw.raw(` class="active" aria-pressed="true"`)
			}
			hw.raw(`>`)
			hw.text(f.Label)
			hw.raw(` <span class="count">`)
			hw.text(strconv.Itoa(f.Count))
			hw.raw(`</span></button>`)
		}
		hw.raw(`</form>`)

		switch {
		case !page.Available:
			hw.raw(`<p class="unavailable" role="status">`)
			hw.text(page.UnavailableMessage)
			hw.raw(`</p>`)
		case len(page.Projects) == 0:
			hw.raw(`<p class="empty">No projects match your filters.</p>`)
		default:
			hw.raw(`<div class="project-grid">`)
			for _, p := range page.Projects {
				hw.render(ctx, ProjectCard(p))
			}
			hw.raw(`</div>`)
		}

		hw.raw(`</section>`)
		return hw.err
	})
}

// ProjectCard renders one project. The image carries its whole fallback chain
// in data-candidates; images.js walks it when a load fails.
func ProjectCard(p vm.ProjectCardViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<article class="project-card"`)
		hw.attr("data-id", p.ID)
		hw.attr("data-category", p.Category)
		hw.raw(`><img class="project-image" loading="lazy"`)
		hw.attr("src", p.ImageRef)
		hw.attr("alt", p.Title)
		hw.attr("data-candidates", p.CandidatesJSON)
		hw.raw(` data-index="0"><div class="project-body"><span class="badge"`)
		hw.attr("data-category", p.Category)
		hw.raw(`>`)
		hw.text(p.Category)
		hw.raw(`</span><h3>`)
		hw.text(p.Title)
		hw.raw(`</h3><p>`)
		hw.text(p.Description)
		hw.raw(`</p>`)

		if len(p.Topics) > 0 {
			hw.raw(`<ul class="topics">`)
			for _, t := range p.Topics {
				hw.raw(`<li>`)
				hw.text(t)
				hw.raw(`</li>`)
			}
			hw.raw(`</ul>`)
		}

		hw.raw(`<dl class="meta"><dt>Language</dt><dd>`)
		hw.text(p.Language)
		hw.raw(`</dd><dt>Stars</dt><dd>`)
		hw.text(strconv.Itoa(p.Stars))
		hw.raw(`</dd><dt>Forks</dt><dd>`)
		hw.text(strconv.Itoa(p.Forks))
		hw.raw(`</dd>`)
		if p.UpdatedAt != "" {
			hw.raw(`<dt>Updated</dt><dd>`)
			hw.text(p.UpdatedAt)
			hw.raw(`</dd>`)
		}
		hw.raw(`</dl><div class="links">`)
		if p.SourceURL != "" {
			hw.raw(`<a`)
			hw.url("href", p.SourceURL)
			hw.raw(` target="_blank" rel="noopener">Source</a>`)
		}
		if p.HomepageURL != "" {
			hw.raw(`<a`)
			hw.url("href", p.HomepageURL)
			hw.raw(` target="_blank" rel="noopener">Live</a>`)
		}
		hw.raw(`</div></div></article>`)
		return hw.err
	})
}

// Languages renders the language summary as proportional bars.
func Languages(langs []vm.LanguageViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="languages"><h2>Languages</h2><ul>`)
		for _, l := range langs {
			hw.raw(`<li><span class="lang-name">`)
			hw.text(l.Name)
			hw.raw(`</span><span class="lang-bar"`)
			hw.attr("style", "width: "+strconv.Itoa(l.Percent)+"%")
			hw.raw(`></span><span class="lang-count">`)
			hw.text(strconv.Itoa(l.Count))
			hw.raw(`</span></li>`)
		}
		hw.raw(`</ul></section>`)
		return hw.err
	})
}

// ContactForm renders the contact form with its CSRF token.
func ContactForm(csrfToken string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section id="contact" class="contact"><h2>Get in touch</h2>`)
		hw.raw(`<form id="contactForm" method="post" action="/contact">`)
		hw.raw(`<input type="hidden" name="csrf_token"`)
		hw.attr("value", csrfToken)
		hw.raw(`>`)
		hw.raw(`<label>Name<input type="text" name="name" maxlength="200" required></label>`)
		hw.raw(`<label>Email<input type="email" name="email" required></label>`)
		hw.raw(`<label>Message<textarea name="message" rows="5" maxlength="5000" required></textarea></label>`)
		hw.raw(`<button type="submit">Send</button>`)
		hw.raw(`<div id="contact-notice" aria-live="polite"></div>`)
		hw.raw(`</form></section>`)
		return hw.err
	})
}

// ChatWidget renders the collapsed assistant widget driven by chat.js.
func ChatWidget() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<aside id="chat" class="chat" hidden>`)
		hw.raw(`<div class="chat-log" aria-live="polite"></div>`)
		hw.raw(`<form class="chat-form"><input type="text" name="message" autocomplete="off" placeholder="Ask me anything">`)
		hw.raw(`<button type="submit">Send</button></form></aside>`)
		hw.raw(`<button id="chat-toggle" class="chat-toggle" type="button" aria-controls="chat">Chat</button>`)
		return hw.err
	})
}

// Notice renders the contact form feedback fragment.
func Notice(n vm.NoticeViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<div role="status"`)
		hw.attr("class", "notice notice-"+n.Kind)
		if n.Field != "" {
			hw.attr("data-field", n.Field)
		}
		hw.raw(`>`)
		hw.text(n.Message)
		hw.raw(`</div>`)
		return hw.err
	})
}
