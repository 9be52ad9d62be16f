// Package phantom adapts the debug bridge to PhantomJS.
//
// PhantomJS runs the script it was started with, and every module loaded from node_modules,
// inside an invisible function wrapper that occupies one line. Positions in those scripts are
// shifted by one line on the way to PhantomJS and back. PhantomJS also holds the initial script
// until __run() is evaluated, which the adapter does once, shortly after the script is parsed.
//
// Positions are 0-based throughout the package.
package phantom
