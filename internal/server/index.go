package server

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>KKH Nursing Chatbot</title>
<style>
  *, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; }
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; background: #f8f9fa; color: #212529; display: flex; flex-direction: column; min-height: 100vh; }
  header { background: #0066cc; color: #fff; padding: 1rem 1.5rem; }
  header h1 { font-size: 1.25rem; }
  header p { font-size: 0.85rem; opacity: 0.85; }
  #chat { flex: 1; max-width: 720px; width: 100%; margin: 0 auto; padding: 1.5rem; overflow-y: auto; }
  .msg { margin-bottom: 1rem; padding: 0.75rem 1rem; border-radius: 10px; max-width: 85%; line-height: 1.5; }
  .user { background: #0066cc; color: #fff; margin-left: auto; }
  .bot { background: #fff; border: 1px solid #dee2e6; }
  .bot .src { font-size: 0.75rem; color: #6c757d; margin-top: 0.5rem; border-top: 1px solid #eee; padding-top: 0.5rem; }
  form { max-width: 720px; width: 100%; margin: 0 auto; padding: 1rem 1.5rem; display: flex; gap: 0.5rem; }
  input { flex: 1; padding: 0.65rem 0.9rem; border: 1px solid #ced4da; border-radius: 8px; font-size: 1rem; }
  button { background: #0066cc; color: #fff; border: 0; border-radius: 8px; padding: 0.65rem 1.2rem; font-size: 1rem; cursor: pointer; }
  button:disabled { opacity: 0.6; }
</style>
</head>
<body>
<header>
  <h1>KKH Nursing Chatbot</h1>
  <p>Ask me anything about KKH nursing protocols.</p>
</header>
<div id="chat"></div>
<form id="form">
  <input id="input" autocomplete="off" placeholder="Ask me anything about KKH nursing protocols..." />
  <button id="send" type="submit">Send</button>
</form>
<script>
  let sessionID = "";
  const chat = document.getElementById("chat");
  const form = document.getElementById("form");
  const input = document.getElementById("input");
  const send = document.getElementById("send");

  function add(cls, html) {
    const div = document.createElement("div");
    div.className = "msg " + cls;
    div.innerHTML = html;
    chat.appendChild(div);
    chat.scrollTop = chat.scrollHeight;
    return div;
  }

  function escape(t) {
    const d = document.createElement("div");
    d.textContent = t;
    return d.innerHTML;
  }

  form.addEventListener("submit", async (e) => {
    e.preventDefault();
    const message = input.value.trim();
    if (!message) return;
    add("user", escape(message));
    input.value = "";
    send.disabled = true;
    try {
      const resp = await fetch("/api/chat", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({ session_id: sessionID, message }),
      });
      if (!resp.ok) {
        add("bot", escape(await resp.text()));
        return;
      }
      const data = await resp.json();
      sessionID = data.session_id;
      let html = data.answer_html;
      if (data.grounded && !data.generated) {
        html += '<div class="src">Model offline &mdash; showing the matching guideline text directly.</div>';
      }
      add("bot", html);
    } catch (err) {
      add("bot", escape("Request failed: " + err));
    } finally {
      send.disabled = false;
      input.focus();
    }
  });
</script>
</body>
</html>`
