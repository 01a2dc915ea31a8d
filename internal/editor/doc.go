// Package editor is a line-oriented note editor built on the bridge.
//
// It loads the host's context item, then treats each input line as the
// new note text. Edits are saved through the bridge's coalesced save
// path, so typing quickly produces one save-items call per pause.
//
// Commands:
//
//	:save           save now, skipping the debounce
//	:set KEY VALUE  store a component data value
//	:get KEY        print a component data value
//	:themes         list active theme stylesheets
//	:env            print the host environment and self uuid
//	:quit           stop reading input
package editor
