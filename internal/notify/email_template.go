package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Match.Code}} – {{.Match.Title}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #463737 0%, #37393b 100%);
      color: #ffffff;
    }

    .code {
      font-size: 24px;
      font-weight: 700;
      letter-spacing: 0.05em;
      margin-bottom: 4px;
    }

    .title {
      font-size: 15px;
      opacity: 0.9;
    }

    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    .meta-grid {
      display: table;
      width: 100%;
      font-size: 14px;
    }

    .meta-row {
      display: table-row;
    }

    .meta-label {
      display: table-cell;
      padding: 6px 16px 6px 0;
      color: #6b7280;
      font-weight: 500;
      white-space: nowrap;
      width: 100px;
    }

    .meta-value {
      display: table-cell;
      padding: 6px 0;
      color: #111827;
    }

    .keywords-list {
      display: flex;
      flex-wrap: wrap;
      gap: 6px;
      margin: 0;
      padding: 0;
      list-style: none;
    }

    .keyword-tag {
      display: inline-block;
      padding: 3px 10px;
      font-size: 12px;
      font-weight: 500;
      background: #e0f2fe;
      color: #0369a1;
      border-radius: 4px;
    }

    .summary {
      font-size: 14px;
    }

    .summary p {
      margin: 0 0 12px 0;
    }

    .cta-button {
      display: inline-block;
      margin-top: 12px;
      padding: 10px 20px;
      font-size: 14px;
      font-weight: 600;
	  color: #ffffff !important;
      background: #463737;
      border-radius: 6px;
      text-decoration: none;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }

    a {
      color: #0b3d91;
      text-decoration: none;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="code">{{.Match.Code}} {{.Match.CompanyName}}</div>
      <div class="title">{{.Match.Title}}</div>
    </div>

    <div class="section">
      <div class="section-title">開示情報</div>
      <div class="meta-grid">
        <div class="meta-row">
          <div class="meta-label">開示日時</div>
          <div class="meta-value">{{.Match.Date}} {{.Match.Time}}</div>
        </div>
        <div class="meta-row">
          <div class="meta-label">上場取引所</div>
          <div class="meta-value">{{.Match.StockExchange}}</div>
        </div>
        {{if .Match.KeywordsFound}}
        <div class="meta-row">
          <div class="meta-label">キーワード</div>
          <div class="meta-value">
            <div class="keywords-list">
              {{range .Match.KeywordsFound}}
              <span class="keyword-tag">{{.}}</span>
              {{end}}
            </div>
          </div>
        </div>
        {{end}}
      </div>
      {{with .Match.PDF}}
      <a href="{{.}}" class="cta-button" target="_blank" rel="noopener">
        PDFを開く →
      </a>
      {{end}}
    </div>

    {{if .SummaryHTML}}
    <div class="section">
      <div class="section-title">{{.Method}}</div>
      <div class="summary">{{.SummaryHTML}}</div>
    </div>
    {{end}}

    <div class="footer">
      Generated by tdnetviewer
    </div>
  </div>
</body>
</html>`
