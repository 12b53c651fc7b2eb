/*
Package assessment hosts one landscape wizard per browser session.

Each session owns a selection.Store over its own storage namespace and a
wizard.Controller. All operations on a session run through Session.Do, which
serializes them behind the session mutex; different sessions never contend.

Opening a session id that already has persisted selections resumes them:
the position resets to the first category and the saved selections are
loaded, exactly as a page reload would.
*/
package assessment
