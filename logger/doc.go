// This file is part of Dismantle.
//
// Dismantle is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Dismantle is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dismantle.  If not, see <https://www.gnu.org/licenses/>.

// Package logger is the central log for the project. There is no provision
// for log levels; the tag argument to the Log() functions groups entries by
// the part of the program that produced them.
//
// Most code should use the package level Log() and Logf() functions, which
// send entries to the central logger. The Logger type is exported so that
// tests can work with a private instance.
//
// The first argument to the Log() functions is a Permission. Types that want
// to control whether logging happens on their behalf implement the single
// AllowLogging() function. When there is no such type in context the
// logger.Allow value can be used.
package logger
