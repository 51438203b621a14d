// Package config holds all configuration for forummirror.
//
// Configuration flows from three places, later ones winning:
//  1. Compile-time defaults (NewConfig)
//  2. The optional .forummirror YAML file (current directory, then home)
//  3. CLI flags
//
// The Config struct is passed explicitly to every component that needs it.
// There is no global configuration state.
package config
