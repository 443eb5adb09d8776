// Command dwfx2pdf converts Autodesk DWFX drawings to PDF.
//
// It offers a one-shot batch mode, a watch daemon that converts files as they
// land in a directory, and a browser upload server. All three feed the same
// bounded worker pool around the external xpstopdf converter.
package main
