package devhost

// shimJS connects a browser page to the dev host. It installs
// window.sendToPlugin, evaluates scripts pushed by native code and follows
// navigation requests.
const shimJS = `(function () {
  var script = document.currentScript;
  var base = script && script.src ? new URL(script.src) : window.location;
  var proto = base.protocol === 'https:' ? 'wss:' : 'ws:';
  var ws = new WebSocket(proto + '//' + base.host + '` + wsPath + `');
  var nextId = 1;
  var pending = {};
  var queue = [];

  function call(name, args) {
    return new Promise(function (resolve) {
      var id = nextId++;
      pending[id] = resolve;
      var frame = JSON.stringify({ id: id, function: name, args: args });
      if (ws.readyState === WebSocket.OPEN) {
        ws.send(frame);
      } else {
        queue.push(frame);
      }
    });
  }

  ws.onopen = function () {
    queue.splice(0).forEach(function (frame) { ws.send(frame); });
  };

  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (typeof msg.eval === 'string') {
      (0, eval)(msg.eval);
    } else if (typeof msg.navigate === 'string') {
      window.location.href = msg.navigate;
    } else if (msg.completion) {
      var resolve = pending[msg.completion.id];
      delete pending[msg.completion.id];
      if (resolve) resolve(msg.completion.result);
    }
  };

  ws.onclose = function () {
    setTimeout(function () { window.location.reload(); }, 1000);
  };

  window.sendToPlugin = function () {
    return call('` + nativeFunctionName + `', Array.prototype.slice.call(arguments));
  };
})();
`
