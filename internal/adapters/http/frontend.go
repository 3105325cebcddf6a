package http

import (
	"net/http"
)

// frontendHTML is the embedded HTML for the sky coverage frontend.
// Mobile-first, responsive design with pure CSS.
const frontendHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Skyline - Sky Coverage</title>
    <style>
        :root {
            --primary: #4338ca;
            --primary-dark: #3730a3;
            --success: #16a34a;
            --error: #dc2626;
            --bg: #0f172a;
            --card: #1e293b;
            --text: #e2e8f0;
            --text-muted: #94a3b8;
            --border: #334155;
            --radius: 8px;
            --shadow: 0 1px 3px rgba(0,0,0,0.4);
        }

        * {
            box-sizing: border-box;
            margin: 0;
            padding: 0;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.5;
            min-height: 100vh;
        }

        .container {
            max-width: 800px;
            margin: 0 auto;
            padding: 1rem;
        }

        header {
            text-align: center;
            padding: 1.5rem 0;
            border-bottom: 1px solid var(--border);
            margin-bottom: 1.5rem;
        }

        header h1 {
            font-size: 1.5rem;
            font-weight: 600;
            color: #818cf8;
        }

        header p {
            color: var(--text-muted);
            font-size: 0.875rem;
            margin-top: 0.25rem;
        }

        .card {
            background: var(--card);
            border-radius: var(--radius);
            box-shadow: var(--shadow);
            padding: 1.25rem;
            margin-bottom: 1rem;
        }

        .card-title {
            font-size: 0.875rem;
            font-weight: 600;
            color: var(--text-muted);
            text-transform: uppercase;
            letter-spacing: 0.05em;
            margin-bottom: 1rem;
        }

        .form-group {
            margin-bottom: 1rem;
        }

        label {
            display: block;
            font-size: 0.875rem;
            font-weight: 500;
            margin-bottom: 0.375rem;
            color: var(--text);
        }

        input {
            width: 100%;
            padding: 0.625rem 0.75rem;
            font-size: 1rem;
            border: 1px solid var(--border);
            border-radius: var(--radius);
            background: var(--bg);
            color: var(--text);
            transition: border-color 0.15s, box-shadow 0.15s;
        }

        input:focus {
            outline: none;
            border-color: var(--primary);
            box-shadow: 0 0 0 3px rgba(67, 56, 202, 0.25);
        }

        input::placeholder {
            color: var(--text-muted);
        }

        .coord-grid {
            display: grid;
            grid-template-columns: 1fr 1fr;
            gap: 0.75rem;
        }

        .btn {
            display: inline-flex;
            align-items: center;
            justify-content: center;
            width: 100%;
            padding: 0.75rem 1rem;
            font-size: 1rem;
            font-weight: 500;
            color: white;
            background: var(--primary);
            border: none;
            border-radius: var(--radius);
            cursor: pointer;
            transition: background-color 0.15s;
        }

        .btn:hover {
            background: var(--primary-dark);
        }

        .btn:disabled {
            background: var(--text-muted);
            cursor: not-allowed;
        }

        .btn-secondary {
            background: var(--card);
            color: var(--text);
            border: 1px solid var(--border);
        }

        .btn-row {
            display: grid;
            grid-template-columns: 1fr auto;
            gap: 0.5rem;
        }

        .error {
            background: #450a0a;
            border: 1px solid #7f1d1d;
            color: #fca5a5;
            padding: 0.75rem 1rem;
            border-radius: var(--radius);
            font-size: 0.875rem;
            margin-bottom: 1rem;
            display: none;
        }

        .error.active {
            display: block;
        }

        #results {
            display: none;
        }

        #results.active {
            display: block;
        }

        .result-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            flex-wrap: wrap;
            gap: 0.5rem;
            margin-bottom: 1rem;
            padding-bottom: 0.75rem;
            border-bottom: 1px solid var(--border);
        }

        .result-coord {
            font-family: 'SF Mono', Monaco, monospace;
            font-size: 0.8125rem;
            background: var(--bg);
            padding: 0.25rem 0.5rem;
            border-radius: 4px;
        }

        .result-stats {
            font-size: 0.8125rem;
            color: var(--text-muted);
        }

        .hit-card {
            border: 1px solid var(--border);
            border-radius: var(--radius);
            margin-bottom: 0.75rem;
            padding: 0.75rem 1rem;
        }

        .hit-name {
            font-weight: 500;
            font-size: 0.9375rem;
        }

        .hit-meta {
            display: flex;
            gap: 0.75rem;
            font-size: 0.75rem;
            color: var(--text-muted);
            margin-top: 0.25rem;
        }

        .badge {
            display: inline-flex;
            align-items: center;
            padding: 0.125rem 0.5rem;
            font-size: 0.75rem;
            font-weight: 500;
            border-radius: 9999px;
            background: #312e81;
            color: #c7d2fe;
        }

        .no-results {
            text-align: center;
            padding: 2rem;
            color: var(--text-muted);
        }

        footer {
            text-align: center;
            padding: 1.5rem 0;
            color: var(--text-muted);
            font-size: 0.75rem;
            border-top: 1px solid var(--border);
            margin-top: 2rem;
        }

        footer a {
            color: #818cf8;
            text-decoration: none;
        }

        footer a:hover {
            text-decoration: underline;
        }

        @media (min-width: 640px) {
            .container {
                padding: 2rem;
            }

            header h1 {
                font-size: 1.75rem;
            }
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Skyline</h1>
            <p>Observation footprint coverage queries</p>
        </header>

        <div class="card">
            <h2 class="card-title">Sky position</h2>
            <form id="queryForm">
                <div class="coord-grid">
                    <div class="form-group">
                        <label for="coordRA">Right ascension (deg)</label>
                        <input type="text" id="coordRA" name="ra" placeholder="e.g. 210.8024" inputmode="decimal" required>
                    </div>
                    <div class="form-group">
                        <label for="coordDec">Declination (deg)</label>
                        <input type="text" id="coordDec" name="dec" placeholder="e.g. 54.3487" inputmode="decimal" required>
                    </div>
                </div>

                <div class="btn-row">
                    <button type="submit" class="btn" id="submitBtn">Query</button>
                    <button type="button" class="btn btn-secondary" id="clearBtn">Clear</button>
                </div>
            </form>
        </div>

        <div class="error" id="error"></div>

        <div id="results">
            <div class="card">
                <h2 class="card-title">Results</h2>
                <div class="result-header">
                    <span class="result-coord" id="resultCoord"></span>
                    <span class="result-stats" id="resultStats"></span>
                </div>
                <div id="resultContent"></div>
            </div>
        </div>

        <footer>
            <a href="/docs">API documentation</a> &middot;
            <a href="/openapi.json">OpenAPI spec</a> &middot;
            <a href="/health">Health status</a>
        </footer>
    </div>

    <script>
        (function() {
            const form = document.getElementById('queryForm');
            const coordRA = document.getElementById('coordRA');
            const coordDec = document.getElementById('coordDec');
            const submitBtn = document.getElementById('submitBtn');
            const clearBtn = document.getElementById('clearBtn');
            const error = document.getElementById('error');
            const results = document.getElementById('results');
            const resultCoord = document.getElementById('resultCoord');
            const resultStats = document.getElementById('resultStats');
            const resultContent = document.getElementById('resultContent');

            clearBtn.addEventListener('click', function() {
                coordRA.value = '';
                coordDec.value = '';
                hideError();
                results.classList.remove('active');
            });

            form.addEventListener('submit', async function(e) {
                e.preventDefault();
                hideError();

                const ra = parseFloat(coordRA.value.replace(',', '.'));
                const dec = parseFloat(coordDec.value.replace(',', '.'));

                if (isNaN(ra) || isNaN(dec)) {
                    showError('Please enter valid coordinates.');
                    return;
                }

                const url = '/api/v1/query?ra=' + encodeURIComponent(ra) +
                    '&dec=' + encodeURIComponent(dec);

                submitBtn.disabled = true;
                results.classList.remove('active');

                try {
                    const response = await fetch(url);

                    if (!response.ok) {
                        let errorMessage = 'Query failed';
                        try {
                            const errorData = await response.json();
                            errorMessage = errorData.message || errorData.error || errorMessage;
                        } catch (parseErr) {
                            // Response could not be parsed as JSON
                        }
                        throw new Error(errorMessage);
                    }

                    const data = await response.json();
                    displayResults(data);
                } catch (err) {
                    showError(err.message);
                } finally {
                    submitBtn.disabled = false;
                }
            });

            function showError(message) {
                error.textContent = message;
                error.classList.add('active');
            }

            function hideError() {
                error.classList.remove('active');
            }

            function displayResults(data) {
                const coord = data.coordinate;
                resultCoord.textContent = 'RA: ' + coord.ra.toFixed(6) + ', Dec: ' + coord.dec.toFixed(6);
                resultStats.textContent = data.hit_count + ' hit(s), ' + data.scanned + ' footprint(s) scanned';

                if (!data.hits || data.hits.length === 0) {
                    resultContent.innerHTML = '<div class="no-results">No observation covers this position.</div>';
                } else {
                    let html = '';
                    data.hits.forEach(function(hit) {
                        html += renderHit(hit);
                    });
                    resultContent.innerHTML = html;
                }

                results.classList.add('active');
            }

            function renderHit(hit) {
                let html = '<div class="hit-card">';
                html += '<span class="hit-name">' + escapeHtml(hit.name || hit.observation_id) + '</span>';
                html += '<div class="hit-meta">';
                html += '<span class="badge">' + hit.area_sqdeg.toFixed(4) + ' deg&sup2;</span>';
                if (hit.member_sources && hit.member_sources.length > 0) {
                    html += '<span>members: ' + hit.member_sources.map(escapeHtml).join(', ') + '</span>';
                }
                html += '</div></div>';
                return html;
            }

            function escapeHtml(str) {
                if (!str) return '';
                return String(str)
                    .replace(/&/g, '&amp;')
                    .replace(/</g, '&lt;')
                    .replace(/>/g, '&gt;')
                    .replace(/"/g, '&quot;')
                    .replace(/'/g, '&#39;');
            }
        })();
    </script>
</body>
</html>`

// handleFrontend serves the sky coverage frontend.
func (s *Server) handleFrontend(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(frontendHTML))
}
