package api

import (
	"net/http"
)

const simulatorHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>InnerVoice - Conversation Simulator</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: system-ui, sans-serif;
            background: #0f172a;
            color: #e2e8f0;
            line-height: 1.5;
        }
        header {
            background: #111827;
            padding: 12px 20px;
            border-bottom: 1px solid #1e293b;
            display: flex;
            justify-content: space-between;
            align-items: center;
        }
        header h1 { font-size: 18px; font-weight: 600; }
        #status {
            padding: 4px 10px;
            border-radius: 4px;
            font-size: 12px;
        }
        #status.connected { background: #1b4332; color: #95d5b2; }
        #status.disconnected { background: #7f1d1d; color: #fca5a5; }
        #status.connecting { background: #78350f; color: #fcd34d; }
        section { max-width: 1100px; margin: 0 auto; padding: 32px 20px; }
        .reveal { opacity: 0; transform: translateY(24px); transition: all 0.6s ease; }
        .reveal.visible { opacity: 1; transform: none; }
        .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); gap: 12px; }
        .expandable-card {
            background: #1e293b;
            border-radius: 8px;
            padding: 14px;
            cursor: pointer;
        }
        .expandable-card .card-body { display: none; margin-top: 8px; color: #94a3b8; font-size: 14px; }
        .expandable-card.active .card-body { display: block; }
        #scenarioTitle { font-size: 15px; color: #a78bfa; margin-bottom: 10px; min-height: 22px; }
        .panes { display: grid; grid-template-columns: 1fr 1fr; gap: 16px; }
        .pane {
            background: #111827;
            border: 1px solid #1e293b;
            border-radius: 8px;
            height: 420px;
            display: flex;
            flex-direction: column;
        }
        .pane h3 { font-size: 13px; padding: 8px 12px; border-bottom: 1px solid #1e293b; color: #94a3b8; }
        .chat { flex: 1; overflow-y: auto; padding: 10px; }
        .message { padding: 8px 12px; margin-bottom: 8px; border-radius: 8px; max-width: 85%; font-size: 14px; }
        .message.partner-a { background: #1e3a8a; }
        .message.partner-b { background: #4c1d95; margin-left: auto; }
        .internal-monologue { margin-bottom: 6px; font-family: monospace; font-size: 13px; }
        .thought {
            --thought-color: #94a3b8;
            padding: 6px 10px;
            border-left: 3px solid var(--thought-color);
            border-radius: 4px;
            background: #0b1220;
        }
        .thought-label {
            display: block;
            font-size: 11px;
            text-transform: uppercase;
            letter-spacing: 0.05em;
            color: var(--thought-color);
        }
        #externalTyping { font-size: 12px; color: #94a3b8; padding: 4px 12px; min-height: 22px; font-style: italic; }
        .controls { margin-top: 16px; display: flex; gap: 12px; align-items: center; }
        button {
            padding: 10px 18px;
            background: #7c3aed;
            border: none;
            border-radius: 6px;
            color: #fff;
            font-size: 14px;
            cursor: pointer;
        }
        button:disabled { background: #475569; cursor: not-allowed; }
        #reason { font-size: 13px; color: #fca5a5; }
    </style>
</head>
<body>
    <header>
        <h1>InnerVoice</h1>
        <span id="status" class="connecting">Connecting...</span>
    </header>

    <section class="reveal">
        <h2>What the other person hears, and what is going on underneath</h2>
        <p>One partner's spoken words appear on the left. The right pane shows the racing internal monologue of the partner with ADHD.</p>
    </section>

    <section class="reveal">
        <div class="cards">
            <div class="expandable-card" onclick="toggleCard(this)">
                <strong>Hyperfocus</strong>
                <div class="card-body">Deep attention locks onto one thing and everything else, including time, falls away.</div>
            </div>
            <div class="expandable-card" onclick="toggleCard(this)">
                <strong>Rejection Sensitivity</strong>
                <div class="card-body">A neutral question can land as criticism long before the words are processed.</div>
            </div>
            <div class="expandable-card" onclick="toggleCard(this)">
                <strong>Working Memory</strong>
                <div class="card-body">Information arrives and leaves before it can be used. The intent was real.</div>
            </div>
        </div>
    </section>

    <section class="reveal">
        <div id="scenarioTitle"></div>
        <div class="panes">
            <div class="pane">
                <h3>External conversation</h3>
                <div id="externalChat" class="chat"></div>
                <div id="externalTyping"></div>
            </div>
            <div class="pane">
                <h3>Internal monologue</h3>
                <div id="internalChat" class="chat"></div>
            </div>
        </div>
        <div class="controls">
            <button id="simulate" onclick="runSimulation()" disabled>Start Simulation</button>
            <span id="reason"></span>
        </div>
    </section>

    <script>
        const statusEl = document.getElementById('status');
        const externalChat = document.getElementById('externalChat');
        const internalChat = document.getElementById('internalChat');
        const typingIndicator = document.getElementById('externalTyping');
        const titleDisplay = document.getElementById('scenarioTitle');
        const btn = document.getElementById('simulate');
        const reasonEl = document.getElementById('reason');
        let ws = null;
        let reconnectTimer = null;

        const observer = new IntersectionObserver(function(entries) {
            entries.forEach(function(entry) {
                if (entry.isIntersecting) {
                    entry.target.classList.add('visible');
                    observer.unobserve(entry.target);
                }
            });
        }, { threshold: 0.1 });
        document.querySelectorAll('.reveal').forEach(function(el) { observer.observe(el); });

        function toggleCard(card) {
            document.querySelectorAll('.expandable-card').forEach(function(c) {
                if (c !== card) c.classList.remove('active');
            });
            card.classList.toggle('active');
        }

        function applyTrigger(trigger, reason) {
            btn.textContent = trigger.label;
            btn.disabled = !trigger.enabled;
            reasonEl.textContent = reason || '';
        }

        function refreshStatus() {
            fetch('/status')
                .then(function(res) { return res.json(); })
                .then(function(data) { applyTrigger(data.trigger, data.reason); })
                .catch(function() {});
        }

        function runSimulation() {
            btn.disabled = true;
            fetch('/simulate', { method: 'POST' })
                .then(function(res) { return res.json(); })
                .then(function(data) {
                    if (!data.ok) reasonEl.textContent = data.error;
                    refreshStatus();
                })
                .catch(function(err) {
                    reasonEl.textContent = 'Error: ' + err.message;
                    refreshStatus();
                });
        }

        function append(container, html) {
            container.insertAdjacentHTML('beforeend', html);
            container.scrollTop = container.scrollHeight;
        }

        function handle(e) {
            const f = e.fields || {};
            switch (e.event) {
            case 'pane.reset':
                if (f.pane === 'internal') internalChat.innerHTML = '';
                if (f.pane === 'external') externalChat.innerHTML = '';
                break;
            case 'scenario.banner':
                titleDisplay.textContent = f.banner;
                break;
            case 'thought.appended':
                append(internalChat, f.html);
                break;
            case 'message.appended':
                append(externalChat, f.html);
                break;
            case 'typing.changed':
                typingIndicator.textContent = f.typing ? e.msg : '';
                break;
            case 'playback.started':
            case 'playback.completed':
            case 'playback.cancelled':
                refreshStatus();
                break;
            }
        }

        function setStatus(status) {
            statusEl.className = status;
            statusEl.textContent = status.charAt(0).toUpperCase() + status.slice(1);
        }

        function connect() {
            if (ws && ws.readyState === WebSocket.OPEN) return;
            setStatus('connecting');
            const protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
            ws = new WebSocket(protocol + '//' + location.host + '/ws/events');

            ws.onopen = function() {
                setStatus('connected');
                if (reconnectTimer) {
                    clearTimeout(reconnectTimer);
                    reconnectTimer = null;
                }
                refreshStatus();
            };
            ws.onmessage = function(msg) {
                try {
                    handle(JSON.parse(msg.data));
                } catch (err) {
                    console.error('Failed to parse event:', err);
                }
            };
            ws.onclose = function() {
                setStatus('disconnected');
                scheduleReconnect();
            };
            ws.onerror = function() {
                ws.close();
            };
        }

        function scheduleReconnect() {
            if (reconnectTimer) return;
            reconnectTimer = setTimeout(function() {
                reconnectTimer = null;
                connect();
            }, 2000);
        }

        connect();
    </script>
</body>
</html>
`

func (s *Server) uiHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(simulatorHTML))
}
