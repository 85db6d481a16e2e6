// Package artifact stores encoded report documents and makes them
// retrievable through mem://<kind>/<id> handles for the process lifetime.
package artifact
