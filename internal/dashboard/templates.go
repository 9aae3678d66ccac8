package dashboard

import "html/template"

// parsePages builds one template set per page, each with the shared
// layout, stylesheet and script.
func parsePages(funcs template.FuncMap) map[string]*template.Template {
	pages := map[string]string{
		"index":    indexPage,
		"preview":  previewPage,
		"login":    loginPage,
		"notfound": notFoundPage,
	}
	out := make(map[string]*template.Template, len(pages))
	for name, body := range pages {
		t := template.Must(template.New("layout").Funcs(funcs).Parse(layoutTemplate))
		template.Must(t.New("css").Parse(cssContent))
		template.Must(t.New("script").Parse(scriptContent))
		out[name] = template.Must(t.New(name).Parse(body))
	}
	return out
}

const layoutTemplate = `<!DOCTYPE html>
<html lang="{{.T.Lang}}" dir="{{.T.Dir}}" data-theme="{{.Theme}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.T.Tf "app.title"}}</title>
  <style>{{template "css"}}</style>
</head>
<body>
  <header class="topbar">
    <a href="/" class="logo">{{.T.Tf "app.logoTitle"}}</a>
    <span class="subtitle">{{.T.Tf "app.subtitle"}}</span>
    <div class="controls">
      <form method="post" action="/prefs/role">
        <button title="{{.T.Tf "role.switchTo"}}" class="role{{if .IsExpert}} expert{{end}}">{{if .IsExpert}}{{.T.Tf "role.expert"}}{{else}}{{.T.Tf "role.regular"}}{{end}}</button>
      </form>
      <form method="post" action="/prefs/language">
        {{if eq .T.Dir "rtl"}}<input type="hidden" name="lang" value="en"><button>{{.T.Tf "app.language.en"}}</button>
        {{else}}<input type="hidden" name="lang" value="ar"><button>{{.T.Tf "app.language.ar"}}</button>{{end}}
      </form>
      <form method="post" action="/prefs/theme">
        <button title="{{.T.Tf "app.theme"}}" aria-label="{{.T.Tf "app.theme"}}">{{if eq (print .Theme) "dark"}}&#9728;{{else}}&#9790;{{end}}</button>
      </form>
      <a href="/login" class="logout">{{.T.Tf "app.logout"}}</a>
    </div>
  </header>
  {{if .Toasts}}
  <div class="toasts" role="status">
    {{range .Toasts}}<div class="toast{{if .Destructive}} destructive{{end}}"><strong>{{.Title}}</strong>{{if .Body}}<p>{{.Body}}</p>{{end}}</div>{{end}}
  </div>
  {{end}}
  <div id="progress" class="progress hidden" aria-live="polite">
    <div class="progress-label"></div>
    <div class="progress-track"><div class="progress-fill"></div></div>
  </div>
  {{template "content" .}}
  <script>{{template "script"}}</script>
</body>
</html>`

const indexPage = `{{define "content"}}{{with .Index}}
<div class="layout">
  <aside class="sidebar">
    <h2>{{$.T.Tf "sidebar.welcome"}}</h2>
    <p>{{$.T.Tf "sidebar.description_new"}}</p>
    <h3>{{$.T.Tf "sidebar.howTo_new"}}</h3>
    <ol>
      <li>{{$.T.Tf "sidebar.step1_new"}}</li>
      <li>{{$.T.Tf "sidebar.step2_new"}}</li>
      <li>{{$.T.Tf "sidebar.step3_new"}}</li>
      <li>{{$.T.Tf "sidebar.step4_new"}}</li>
      <li>{{$.T.Tf "sidebar.step5_new"}}</li>
      <li>{{$.T.Tf "sidebar.step6_new"}}</li>
    </ol>
    <h3>{{$.T.Tf "sidebar.features_new"}}</h3>
    <ul>
      <li>{{$.T.Tf "features.instantAnalysis_new"}}</li>
      <li>{{$.T.Tf "features.designedForIslamicLaw"}}</li>
      <li>{{$.T.Tf "features.expertReviewLoop"}}</li>
      <li>{{$.T.Tf "features.exportDocuments"}}</li>
      <li>{{$.T.Tf "features.multilingual_new"}}</li>
      <li>{{$.T.Tf "features.darkMode_new"}}</li>
    </ul>
  </aside>
  <main>
    <section id="upload" class="card">
      <h2>{{$.T.Tf "upload.title"}}</h2>
      <p class="muted">{{$.T.Tf "upload.description"}}</p>
      <form method="post" action="/upload" enctype="multipart/form-data" class="upload">
        <input type="file" name="file" accept=".pdf,.txt,.docx" required>
        <button>{{$.T.Tf "upload.dragDrop"}}</button>
      </form>
      <p class="muted">{{$.T.Tf "upload.formats"}}</p>
      {{if .Pending}}
      <p class="selected">{{.Pending}}: {{$.T.Tf "upload.fileSelected"}}</p>
      <form method="post" action="/analyze" data-busy><button class="primary">{{$.T.Tf "upload.analyze"}}</button></form>
      {{end}}
      {{if .Analyzing}}<p class="muted">{{$.T.Tf "upload.analyzing"}}: {{$.T.Tf "upload.analyzingMessage"}}</p>{{end}}
      {{if .Flags.FetchingSession}}<p class="muted">{{$.T.Tf "loadingTerms"}}</p>{{end}}
      {{if .UploadError}}<p class="error">{{.UploadError}}</p>{{end}}
      {{if .AnalysisError}}<p class="error">{{$.T.Tf "error.analysisFailed"}}: {{.AnalysisError}}</p>{{end}}
      {{if .HasSession}}<form method="post" action="/session/clear"><button>{{$.T.Tf "upload.newAnalysis"}}</button></form>{{end}}
    </section>

    {{if .HasSession}}
    <section class="card banner tone-{{.Tone}}">
      <h2>{{$.T.Tf (printf "compliance.%s" .Headline)}}</h2>
      <p class="percent">{{$.T.Tf "stats.percentage" "percentage" .Percentage}}</p>
      <p>{{$.T.Tf "stats.summary" "compliant" .Stats.Compliant "warning" .Stats.Warning "nonCompliant" .Stats.NonCompliant "total" .Stats.Total}}</p>
      <div class="meter"><span style="width: {{.Percentage}}%"></span></div>
      <form method="post" action="/refresh"><button>{{$.T.Tf "term.refresh"}}</button></form>
    </section>

    <section class="card">
      <h2>{{$.T.Tf "contract.terms"}}{{with .Filename}} &middot; {{.}}{{end}}</h2>
      <nav class="tabs">
        {{range .Tabs}}<a href="/?filter={{.Filter}}"{{if .Active}} class="active"{{end}}>{{.Label}} ({{.Count}})</a>{{end}}
      </nav>
      {{if eq .Stats.Total 0}}<p class="muted">{{$.T.Tf "term.noTermsExtracted"}}</p>
      {{else if not .Terms}}<p class="muted">{{$.T.Tf "term.noTermsForFilter"}}</p>{{end}}
      {{range .Terms}}
      <article id="term-{{.TermID}}" class="term status-{{.Status}}">
        <header>
          <form method="post" action="/terms/{{.TermID}}/toggle">
            <input type="hidden" name="filter" value="{{$.Index.Filter}}">
            <button class="link">{{.TermText}}</button>
          </form>
          <span class="badge">{{.StatusLabel}}</span>
          {{if .IsUserConfirmed}}<span class="badge confirmed">{{$.T.Tf "term.confirmed"}}</span>{{end}}
          {{if .Busy}}<span class="muted">{{$.T.Tf "processing"}}</span>{{end}}
        </header>
        {{if .Expanded}}
        <div class="term-body">
          <h4>{{$.T.Tf "term.fullText"}}</h4>
          <p>{{.TermText}}</p>
          {{if .ShariaIssue}}<h4>{{$.T.Tf "term.why"}}</h4><p>{{.ShariaIssue}}</p>{{end}}
          {{if .ReferenceNumber}}<h4>{{$.T.Tf "term.reference"}}</h4><p>{{.ReferenceNumber}}</p>{{end}}
          {{if .ModifiedTerm}}<h4>{{$.T.Tf "term.initialSuggestion"}}</h4><p>{{.ModifiedTerm}}</p>{{end}}
          {{if .ReviewedSuggestion}}
          <h4>{{$.T.Tf "term.reviewedSuggestion"}}</h4>
          <p>{{.ReviewedSuggestion}}</p>
          {{with .ReviewedSuggestionIssue}}<p class="muted">{{$.T.Tf "term.newShariaIssue"}}: {{.}}</p>{{end}}
          {{end}}
          {{if .UserModifiedText}}<h4>{{$.T.Tf "term.yourEdit"}}</h4><p>{{.UserModifiedText}}</p>{{end}}
          {{if .Current}}<h4>{{$.T.Tf "term.currentSuggestion"}}</h4><p class="current">{{.Current}}</p>{{end}}

          <form method="post" action="/terms/{{.TermID}}/confirm" data-busy>
            <input type="hidden" name="filter" value="{{$.Index.Filter}}">
            <button class="primary"{{if .Busy}} disabled{{end}}>{{$.T.Tf "button.confirm"}}</button>
          </form>
          <form method="post" action="/terms/{{.TermID}}/edit" data-busy>
            <input type="hidden" name="filter" value="{{$.Index.Filter}}">
            <label>{{if .IsUserConfirmed}}{{$.T.Tf "term.editConfirmed"}}{{else}}{{$.T.Tf "term.editSuggestion"}}{{end}}
              <textarea name="text" rows="4">{{.EditStart}}</textarea></label>
            <button{{if .Busy}} disabled{{end}}>{{$.T.Tf "term.saveAndReview"}}</button>
          </form>
          <form method="post" action="/terms/{{.TermID}}/ask" data-busy>
            <input type="hidden" name="filter" value="{{$.Index.Filter}}">
            <label>{{$.T.Tf "term.askQuestion"}}
              <textarea name="question" rows="2" placeholder="{{$.T.Tf "term.questionPlaceholder"}}"></textarea></label>
            <button{{if .Busy}} disabled{{end}}>{{$.T.Tf "button.send"}}</button>
          </form>
          {{if .CurrentQAAnswer}}
          <h4>{{$.T.Tf "term.answer"}}</h4>
          <div class="answer">{{markdown .CurrentQAAnswer}}</div>
          {{with .QAMeta}}{{with .ReferenceStandard}}<p class="muted">{{$.T.Tf "term.reference"}}: {{.}}</p>{{end}}{{end}}
          <form method="post" action="/terms/{{.TermID}}/use-answer" data-busy>
            <input type="hidden" name="filter" value="{{$.Index.Filter}}">
            <button>{{$.T.Tf "button.useAndReview"}}</button>
          </form>
          {{end}}

          {{if $.IsExpert}}
          <details class="expert">
            <summary>{{$.T.Tf "expert.provideFeedback"}}</summary>
            <form method="post" action="/terms/{{.TermID}}/feedback" data-busy>
              <input type="hidden" name="filter" value="{{$.Index.Filter}}">
              <fieldset>
                <legend>{{$.T.Tf "expert.aiAssessmentCorrect"}}</legend>
                <label><input type="radio" name="approved" value="yes"> {{$.T.Tf "expert.yes"}}</label>
                <label><input type="radio" name="approved" value="no"> {{$.T.Tf "expert.no"}}</label>
              </fieldset>
              <label>{{$.T.Tf "expert.correctedCompliance"}}
                <select name="valid">
                  <option value="compliant"{{if .DraftValid}} selected{{end}}>{{$.T.Tf "term.compliant"}}</option>
                  <option value="non_compliant"{{if not .DraftValid}} selected{{end}}>{{$.T.Tf "term.non-compliant"}}</option>
                </select></label>
              <label>{{$.T.Tf "expert.comments"}}<textarea name="comment" rows="2"></textarea></label>
              <label>{{$.T.Tf "term.why"}}<input name="issue" value="{{.Draft.CorrectedIssue}}"></label>
              <label>{{$.T.Tf "term.reference"}}<input name="reference" value="{{.Draft.CorrectedReference}}"></label>
              <label>{{$.T.Tf "expert.correctedSuggestion"}}<textarea name="suggestion" rows="3">{{.Draft.CorrectedSuggestion}}</textarea></label>
              <button class="primary">{{$.T.Tf "expert.submitFeedback"}}</button>
            </form>
          </details>
          {{end}}
        </div>
        {{end}}
      </article>
      {{end}}
    </section>

    <section id="generate" class="card">
      <h2>{{$.T.Tf "contract.reviewContract"}}</h2>
      <p class="muted">{{$.T.Tf "contract.generateInfo"}}</p>
      <div class="actions">
        <form method="post" action="/generate/modified" data-busy>
          <button class="primary"{{if .Flags.Generating}} disabled{{end}}>{{$.T.Tf "contract.generateButton"}}</button>
        </form>
        <form method="post" action="/generate/marked" data-busy>
          <button{{if .Flags.Generating}} disabled{{end}}>{{$.T.Tf "contract.generateMarkedButton"}}</button>
        </form>
      </div>
      {{with .Modified}}
      <p>{{$.T.Tf "contract.generatedMessage"}}</p>
      <a class="button" href="/preview/modified">{{$.T.Tf "contract.preview.modifiedTitle"}}</a>
      {{with .DocxCloudinaryInfo}}<a class="button" href="{{.URL}}">{{$.T.Tf "contract.downloadCompliantDOCX"}}</a>{{end}}
      {{end}}
      {{with .Marked}}
      <p>{{$.T.Tf "contract.markedGeneratedMessage"}}</p>
      <a class="button" href="/preview/marked">{{$.T.Tf "contract.preview.markedTitle"}}</a>
      {{with .DocxCloudinaryInfo}}<a class="button" href="{{.URL}}">{{$.T.Tf "contract.downloadMarkedDOCX"}}</a>{{end}}
      {{end}}
    </section>

    <section id="question" class="card">
      <h2>{{$.T.Tf "term.askGeneralQuestion"}}</h2>
      <form method="post" action="/question" data-busy>
        <textarea name="question" rows="3" placeholder="{{$.T.Tf "term.generalQuestionPlaceholder"}}"></textarea>
        <button>{{$.T.Tf "button.send"}}</button>
      </form>
      {{with .General}}
      <p class="muted">{{.Question}}</p>
      <div class="answer">{{markdown .Answer}}</div>
      {{end}}
    </section>

    {{with .ContractMarkdown}}
    <section class="card">
      <details>
        <summary>{{$.T.Tf "contract.preview.title"}}</summary>
        <div class="contract">{{markdown .}}</div>
      </details>
    </section>
    {{end}}
    {{else}}
    <section class="card"><p class="muted">{{$.T.Tf "term.noSession"}}</p></section>
    {{end}}

    <section id="history" class="card">
      <h2>{{$.T.Tf "history.title"}}</h2>
      {{if .History}}
      <ul class="history">
        {{range .History}}<li><span>{{.Line}}</span>{{with .TermID}} <a href="#term-{{.}}">#{{.}}</a>{{end}}{{with .Details}}<p class="muted">{{.}}</p>{{end}}</li>{{end}}
      </ul>
      {{else}}<p class="muted">{{$.T.Tf "history.noHistory"}}</p>{{end}}
    </section>
  </main>
</div>
{{end}}{{end}}`

const previewPage = `{{define "content"}}{{with .Preview}}
<section class="card preview">
  <h2>{{.Title}}</h2>
  <p class="muted">{{.Preview}}</p>
  {{if .Error}}
  <div class="error">
    {{if .NoFile}}<strong>{{$.T.Tf "contract.preview.noFileUrlTitle"}}</strong>{{else}}<strong>{{$.T.Tf "contract.preview.errorTitle"}}</strong>{{end}}
    <p>{{.Error}}</p>
  </div>
  <a class="button" href="/preview/{{.Kind}}">{{$.T.Tf "retry"}}</a>
  {{else}}
  <p>{{$.T.Tf "contract.preview.openOrDownload"}}</p>
  <iframe src="{{.PDFURL}}" title="{{.Title}}"></iframe>
  <div class="actions">
    <a class="button primary" href="{{.PDFURL}}" target="_blank" rel="noopener">{{$.T.Tf "contract.preview.openInNewTab"}}</a>
    <a class="button" href="{{.PDFURL}}" download="{{.PDFName}}">{{$.T.Tf "contract.downloadPDF"}}</a>
    {{if .DocxURL}}<a class="button" href="{{.DocxURL}}" download="{{.DocxName}}">{{$.T.Tf "contract.downloadDOCX"}}</a>{{end}}
  </div>
  {{end}}
  <a href="/#generate">{{$.T.Tf "contract.preview.close"}}</a>
</section>
{{end}}{{end}}`

const loginPage = `{{define "content"}}
<section class="card narrow">
  <h1>{{.T.Tf "login.title"}}</h1>
  <p class="muted">{{.T.Tf "login.subtitle"}}</p>
  <form method="post" action="/login" class="stack">
    <label>{{.T.Tf "login.email"}}<input type="email" name="email" placeholder="{{.T.Tf "login.emailPlaceholder"}}"></label>
    <label>{{.T.Tf "login.password"}}<input type="password" name="password"></label>
    <button class="primary">{{.T.Tf "login.submit"}}</button>
  </form>
  <a href="/login">{{.T.Tf "login.forgot"}}</a>
</section>
{{end}}`

const notFoundPage = `{{define "content"}}
<section class="card narrow notfound">
  <h1>{{.T.Tf "notFound.title"}}</h1>
  <p>{{.T.Tf "notFound.message"}}</p>
  <a class="button" href="/">{{.T.Tf "notFound.home"}}</a>
</section>
{{end}}`

// cssContent styles every page. Logical properties keep the layout
// correct in right-to-left mode.
const cssContent = `
:root {
  --bg: #f7f7f5;
  --card: #ffffff;
  --text: #1f2933;
  --muted: #6b7280;
  --border: #e5e7eb;
  --accent: #0f766e;
  --good: #15803d;
  --caution: #b45309;
  --bad: #b91c1c;
}
[data-theme="dark"] {
  --bg: #111827;
  --card: #1f2937;
  --text: #f3f4f6;
  --muted: #9ca3af;
  --border: #374151;
  --accent: #2dd4bf;
}
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, sans-serif; background: var(--bg); color: var(--text); }
a { color: var(--accent); }
.topbar { display: flex; align-items: center; gap: 1rem; padding: .75rem 1.5rem; background: var(--card); border-block-end: 1px solid var(--border); }
.topbar .logo { font-weight: 700; font-size: 1.25rem; text-decoration: none; }
.topbar .subtitle { color: var(--muted); }
.topbar .controls { margin-inline-start: auto; display: flex; gap: .5rem; align-items: center; }
.layout { display: grid; grid-template-columns: 18rem 1fr; gap: 1.5rem; padding: 1.5rem; }
.sidebar { font-size: .9rem; color: var(--muted); }
.card { background: var(--card); border: 1px solid var(--border); border-radius: .5rem; padding: 1rem 1.25rem; margin-block-end: 1rem; }
.card.narrow { max-width: 28rem; margin: 3rem auto; }
.muted { color: var(--muted); }
.error { color: var(--bad); }
button, .button { display: inline-block; padding: .4rem .9rem; border: 1px solid var(--border); border-radius: .375rem; background: var(--card); color: var(--text); cursor: pointer; text-decoration: none; }
button.primary, .button.primary { background: var(--accent); border-color: var(--accent); color: #fff; }
button.link { border: 0; background: none; padding: 0; text-align: start; font: inherit; color: inherit; }
button[disabled] { opacity: .5; cursor: wait; }
form { margin-block: .5rem; }
label { display: block; margin-block: .5rem; }
textarea, input[name], select { width: 100%; padding: .4rem; border: 1px solid var(--border); border-radius: .375rem; background: var(--bg); color: var(--text); }
input[type="radio"], input[type="file"] { width: auto; }
.actions { display: flex; gap: .5rem; flex-wrap: wrap; }
.banner.tone-good { border-inline-start: 6px solid var(--good); }
.banner.tone-caution { border-inline-start: 6px solid var(--caution); }
.banner.tone-bad { border-inline-start: 6px solid var(--bad); }
.banner .percent { font-size: 1.5rem; font-weight: 600; }
.meter { height: .5rem; background: var(--border); border-radius: 1rem; overflow: hidden; }
.meter span { display: block; height: 100%; background: var(--accent); }
.tabs { display: flex; gap: 1rem; margin-block: .75rem; }
.tabs a { text-decoration: none; color: var(--muted); }
.tabs a.active { color: var(--accent); font-weight: 600; }
.term { border-block-start: 1px solid var(--border); padding-block: .75rem; }
.term header { display: flex; gap: .75rem; align-items: baseline; }
.term header form { flex: 1; margin: 0; }
.badge { font-size: .75rem; padding: .1rem .5rem; border-radius: 1rem; background: var(--border); white-space: nowrap; }
.status-compliant .badge:first-of-type { background: #dcfce7; color: var(--good); }
.status-warning .badge:first-of-type { background: #fef3c7; color: var(--caution); }
.status-non_compliant .badge:first-of-type { background: #fee2e2; color: var(--bad); }
.term-body h4 { margin-block: .75rem .25rem; font-size: .75rem; letter-spacing: .05em; color: var(--muted); }
.current { font-weight: 500; }
.answer { background: var(--bg); padding: .5rem .75rem; border-radius: .375rem; }
.history li { margin-block-end: .5rem; }
.toasts { position: fixed; inset-block-start: 1rem; inset-inline-end: 1rem; display: grid; gap: .5rem; z-index: 10; }
.toast { background: var(--card); border: 1px solid var(--border); border-radius: .5rem; padding: .75rem 1rem; min-width: 16rem; box-shadow: 0 4px 12px rgba(0,0,0,.1); }
.toast.destructive { border-color: var(--bad); color: var(--bad); }
.toast p { margin: .25rem 0 0; }
.progress { position: fixed; inset-block-end: 1rem; inset-inline-start: 50%; transform: translateX(-50%); width: min(32rem, 90vw); background: var(--card); border: 1px solid var(--border); border-radius: .5rem; padding: .75rem 1rem; z-index: 10; }
.progress.hidden { display: none; }
.progress-track { height: .4rem; background: var(--border); border-radius: 1rem; margin-block-start: .5rem; overflow: hidden; }
.progress-fill { height: 100%; width: 0; background: var(--accent); transition: width .1s linear; }
.progress[data-kind="question"] .progress-track { display: none; }
.preview iframe { width: 100%; height: 70vh; border: 1px solid var(--border); border-radius: .375rem; }
@media (max-width: 900px) { .layout { grid-template-columns: 1fr; } .sidebar { display: none; } }
`

// scriptContent follows the progress stream and disables buttons of a
// form while it submits.
const scriptContent = `
(function () {
  var box = document.getElementById('progress');
  var label = box.querySelector('.progress-label');
  var fill = box.querySelector('.progress-fill');
  var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(scheme + location.host + '/ws/progress');
  ws.onmessage = function (ev) {
    var m = JSON.parse(ev.data);
    if (m.hidden) {
      box.classList.add('hidden');
      if (m.kind === 'analysis') { location.reload(); }
      return;
    }
    box.classList.remove('hidden');
    box.dataset.kind = m.kind;
    label.textContent = m.label || '';
    fill.style.width = m.percent + '%';
  };
  document.querySelectorAll('form[data-busy]').forEach(function (form) {
    form.addEventListener('submit', function () {
      form.querySelectorAll('button').forEach(function (b) { b.disabled = true; });
    });
  });
})();
`
